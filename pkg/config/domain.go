package config

// Subskill is a granular element within a skill.
type Subskill struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Skill is one component of a competency, with its subskills and
// prerequisite skill ids.
type Skill struct {
	Name           string              `json:"name"`
	Description    string              `json:"description,omitempty"`
	CognitiveLevel string              `json:"cognitive_level,omitempty"`
	DepthLevel     string              `json:"depth_level,omitempty"`
	Prerequisites  []string            `json:"prerequisites,omitempty"`
	Subskills      map[string]Subskill `json:"subskills,omitempty"`
}

// Competency is a top-level area of the hierarchical framework.
type Competency struct {
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Skills      map[string]Skill `json:"skills"`
}

// DomainModel is the domain_model.json document: the competency framework
// the evaluator scores against. Immutable after load.
type DomainModel struct {
	Competencies map[string]Competency `json:"competencies"`
}

// SkillContext is the resolved context for a single skill, handed to the
// prompt assembly and the pipeline.
type SkillContext struct {
	SkillID      string              `json:"skill_id"`
	SkillName    string              `json:"skill_name"`
	Description  string              `json:"description,omitempty"`
	CompetencyID string              `json:"competency_id,omitempty"`
	Competency   string              `json:"competency,omitempty"`
	Subskills    map[string]Subskill `json:"subskills,omitempty"`
}

// PrerequisiteRelationships lists a skill's prerequisites and the skills
// that depend on it.
type PrerequisiteRelationships struct {
	SkillID       string   `json:"skill_id"`
	Prerequisites []string `json:"prerequisites"`
	DependentOf   []string `json:"dependent_skills"`
}

// Lookup returns the skill and its owning competency id, if present.
func (m *DomainModel) Lookup(skillID string) (Skill, string, bool) {
	for compID, comp := range m.Competencies {
		if skill, ok := comp.Skills[skillID]; ok {
			return skill, compID, true
		}
	}
	return Skill{}, "", false
}

// SkillName resolves a skill id to its display name, falling back to the id.
func (m *DomainModel) SkillName(skillID string) string {
	if skill, _, ok := m.Lookup(skillID); ok && skill.Name != "" {
		return skill.Name
	}
	return skillID
}

// SkillContext resolves the full context for one skill. Unknown ids return
// a context that carries only the id, so prompt assembly degrades gracefully.
func (m *DomainModel) SkillContext(skillID string) SkillContext {
	skill, compID, ok := m.Lookup(skillID)
	if !ok {
		return SkillContext{SkillID: skillID, SkillName: skillID}
	}
	comp := m.Competencies[compID]
	return SkillContext{
		SkillID:      skillID,
		SkillName:    skill.Name,
		Description:  skill.Description,
		CompetencyID: compID,
		Competency:   comp.Name,
		Subskills:    skill.Subskills,
	}
}

// PrerequisiteRelationships resolves both directions of the prerequisite
// graph for one skill.
func (m *DomainModel) PrerequisiteRelationships(skillID string) PrerequisiteRelationships {
	rel := PrerequisiteRelationships{
		SkillID:       skillID,
		Prerequisites: []string{},
		DependentOf:   []string{},
	}
	if skill, _, ok := m.Lookup(skillID); ok {
		rel.Prerequisites = append(rel.Prerequisites, skill.Prerequisites...)
	}
	for _, comp := range m.Competencies {
		for otherID, other := range comp.Skills {
			for _, prereq := range other.Prerequisites {
				if prereq == skillID {
					rel.DependentOf = append(rel.DependentOf, otherID)
				}
			}
		}
	}
	return rel
}
