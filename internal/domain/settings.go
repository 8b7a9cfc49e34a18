package domain

// QuickRemark is a canned label that can be appended to post-call notes.
type QuickRemark struct {
	ID   string `json:"id" yaml:"id"`
	Text string `json:"text" yaml:"text"`
	Icon string `json:"icon,omitempty" yaml:"icon"`
}

// Settings holds the per-workspace follow-up rules and script guidance.
type Settings struct {
	CustomerFollowUpRule string        `json:"customerFollowUpRule" yaml:"customerFollowUpRule"`
	ProspectFollowUpRule string        `json:"prospectFollowUpRule" yaml:"prospectFollowUpRule"`
	ScriptTemplates      string        `json:"scriptTemplates" yaml:"scriptTemplates"`
	QuickRemarks         []QuickRemark `json:"quickRemarks" yaml:"quickRemarks"`
}

// Clone returns a copy with its own remark slice.
func (s Settings) Clone() Settings {
	out := s
	out.QuickRemarks = make([]QuickRemark, len(s.QuickRemarks))
	copy(out.QuickRemarks, s.QuickRemarks)
	return out
}

// SettingsPatch updates the free-text settings. Nil fields are untouched.
type SettingsPatch struct {
	CustomerFollowUpRule *string `json:"customerFollowUpRule,omitempty"`
	ProspectFollowUpRule *string `json:"prospectFollowUpRule,omitempty"`
	ScriptTemplates      *string `json:"scriptTemplates,omitempty"`
}

// Apply merges p into s.
func (p SettingsPatch) Apply(s *Settings) {
	setString(&s.CustomerFollowUpRule, p.CustomerFollowUpRule)
	setString(&s.ProspectFollowUpRule, p.ProspectFollowUpRule)
	setString(&s.ScriptTemplates, p.ScriptTemplates)
}
