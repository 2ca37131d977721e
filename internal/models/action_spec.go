package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ActionSpecKind tags the shape of an action specification
type ActionSpecKind string

const (
	ActionSpecSteps  ActionSpecKind = "steps"
	ActionSpecAdCopy ActionSpecKind = "ad_copy_change"
)

// ActionSpec is what a proposal asks to change. Kind selects which of Steps
// or AdCopy is populated; edit history and rejection notes apply to both.
type ActionSpec struct {
	Kind            ActionSpecKind
	Steps           []ActionStep
	AdCopy          *AdCopyChange
	EditHistory     []EditRecord
	RejectionReason string
	RejectedAt      *time.Time
}

// ActionStep is one free-form step of a list-shaped specification
type ActionStep struct {
	Order        int      `json:"order,omitempty"`
	Description  string   `json:"description"`
	CampaignRef  string   `json:"campaign_id,omitempty"`
	CurrentValue *float64 `json:"current_value,omitempty"`
	NewValue     *float64 `json:"new_value,omitempty"`
	Value        *float64 `json:"value,omitempty"`
}

// UnmarshalJSON accepts both object steps and bare description strings
func (s *ActionStep) UnmarshalJSON(b []byte) error {
	if trimmed := bytes.TrimSpace(b); len(trimmed) > 0 && trimmed[0] == '"' {
		return json.Unmarshal(trimmed, &s.Description)
	}
	type plain ActionStep
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*s = ActionStep(p)
	return nil
}

// TargetValue returns the new amount the step asks for, if any
func (s ActionStep) TargetValue() *float64 {
	if s.NewValue != nil {
		return s.NewValue
	}
	return s.Value
}

// AdCopyChange is the structured specification of the ad-copy category
type AdCopyChange struct {
	AdGroupRef string     `json:"ad_group_id"`
	CurrentAd  CurrentAd  `json:"current_ad"`
	ProposedAd ProposedAd `json:"proposed_ad"`
	Rationale  []string   `json:"rationale,omitempty"`
}

// CurrentAd describes the ad being replaced
type CurrentAd struct {
	AdRef        string   `json:"ad_id,omitempty"`
	Headlines    []string `json:"headlines,omitempty"`
	Descriptions []string `json:"descriptions,omitempty"`
	FinalURL     string   `json:"final_url,omitempty"`
}

// ProposedAd is the responsive search ad to create
type ProposedAd struct {
	Headlines    []string `json:"headlines"`
	Descriptions []string `json:"descriptions"`
	FinalURL     string   `json:"final_url"`
}

// EditRecord captures one reviewer edit applied at approval time
type EditRecord struct {
	OriginalActionSpec json.RawMessage `json:"original_action_steps" swaggertype:"object"`
	EditedValues       Overrides       `json:"edited_values"`
	EditReason         string          `json:"edit_reason,omitempty"`
	EditedAt           time.Time       `json:"edited_at"`
	EditedBy           string          `json:"edited_by"`
}

// KeywordSpec is a positive keyword to add to an ad group
type KeywordSpec struct {
	Text      string `json:"text"`
	MatchType string `json:"match_type,omitempty"`
}

// UnmarshalJSON accepts both {"text":...} objects and bare strings
func (k *KeywordSpec) UnmarshalJSON(b []byte) error {
	if trimmed := bytes.TrimSpace(b); len(trimmed) > 0 && trimmed[0] == '"' {
		return json.Unmarshal(trimmed, &k.Text)
	}
	type plain KeywordSpec
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*k = KeywordSpec(p)
	return nil
}

// Overrides are reviewer-edited values that take precedence over the action spec
type Overrides struct {
	CampaignRef      string             `json:"campaign_id,omitempty"`
	CurrentValue     *float64           `json:"current_value,omitempty"`
	NewValue         *float64           `json:"new_value,omitempty"`
	TargetCPA        *float64           `json:"target_cpa,omitempty"`
	TargetROAS       *float64           `json:"target_roas,omitempty"`
	NegativeKeywords []string           `json:"negative_keywords,omitempty"`
	MatchType        string             `json:"match_type,omitempty"`
	AddKeywords      []KeywordSpec      `json:"add_keywords,omitempty"`
	AdGroupRef       string             `json:"ad_group_id,omitempty"`
	Headlines        []string           `json:"headlines,omitempty"`
	Descriptions     []string           `json:"descriptions,omitempty"`
	FinalURL         string             `json:"final_url,omitempty"`
	OldAdRef         string             `json:"old_ad_id,omitempty"`
	DeviceModifiers  map[string]float64 `json:"device_modifiers,omitempty"`
}

// IsEmpty reports whether o carries no edited value at all
func (o *Overrides) IsEmpty() bool {
	if o == nil {
		return true
	}
	return o.CampaignRef == "" && o.CurrentValue == nil && o.NewValue == nil &&
		o.TargetCPA == nil && o.TargetROAS == nil &&
		len(o.NegativeKeywords) == 0 && o.MatchType == "" && len(o.AddKeywords) == 0 &&
		o.AdGroupRef == "" && len(o.Headlines) == 0 && len(o.Descriptions) == 0 &&
		o.FinalURL == "" && o.OldAdRef == "" && len(o.DeviceModifiers) == 0
}

// NewStepsSpec builds a list-shaped specification
func NewStepsSpec(steps ...ActionStep) ActionSpec {
	return ActionSpec{Kind: ActionSpecSteps, Steps: steps}
}

// NewAdCopySpec builds a structured ad-copy specification
func NewAdCopySpec(change AdCopyChange) ActionSpec {
	return ActionSpec{Kind: ActionSpecAdCopy, AdCopy: &change}
}

// ChangeCount is the number of discrete changes the specification requests
func (s ActionSpec) ChangeCount() int {
	if s.Kind == ActionSpecAdCopy {
		if s.AdCopy != nil && s.AdCopy.CurrentAd.AdRef != "" {
			return 2
		}
		return 1
	}
	return len(s.Steps)
}

// CampaignRef returns the first campaign reference found in the steps
func (s ActionSpec) CampaignRef() string {
	for _, step := range s.Steps {
		if step.CampaignRef != "" {
			return step.CampaignRef
		}
	}
	return ""
}

// BudgetTarget returns the first new amount requested by the steps,
// preferring steps that mention a budget.
func (s ActionSpec) BudgetTarget() (current, target *float64) {
	var fallback *ActionStep
	for i := range s.Steps {
		step := &s.Steps[i]
		if step.TargetValue() == nil {
			continue
		}
		if strings.Contains(strings.ToLower(step.Description), "budget") {
			return step.CurrentValue, step.TargetValue()
		}
		if fallback == nil {
			fallback = step
		}
	}
	if fallback != nil {
		return fallback.CurrentValue, fallback.TargetValue()
	}
	return nil, nil
}

// Content returns a copy of s without edit history or rejection notes
func (s ActionSpec) Content() ActionSpec {
	return ActionSpec{Kind: s.Kind, Steps: s.Steps, AdCopy: s.AdCopy}
}

// Validate checks that the populated variant matches Kind
func (s ActionSpec) Validate() error {
	switch s.Kind {
	case ActionSpecSteps:
		if s.AdCopy != nil {
			return fmt.Errorf("steps specification must not carry an ad copy change")
		}
	case ActionSpecAdCopy:
		if s.AdCopy == nil {
			return fmt.Errorf("ad copy specification is missing its change")
		}
		if len(s.Steps) > 0 {
			return fmt.Errorf("ad copy specification must not carry steps")
		}
	default:
		return fmt.Errorf("unknown action specification kind %q", s.Kind)
	}
	return nil
}

type actionSpecWire struct {
	Type  string       `json:"type"`
	Steps []ActionStep `json:"steps,omitempty"`
	*AdCopyChange
	EditHistory     []EditRecord `json:"edit_history,omitempty"`
	RejectionReason string       `json:"rejection_reason,omitempty"`
	RejectedAt      *time.Time   `json:"rejected_at,omitempty"`
}

// MarshalJSON writes the tagged form
func (s ActionSpec) MarshalJSON() ([]byte, error) {
	kind := s.Kind
	if kind == "" {
		kind = ActionSpecSteps
	}
	w := actionSpecWire{
		Type:            string(kind),
		EditHistory:     s.EditHistory,
		RejectionReason: s.RejectionReason,
		RejectedAt:      s.RejectedAt,
	}
	if kind == ActionSpecAdCopy {
		w.AdCopyChange = s.AdCopy
	} else {
		w.Steps = s.Steps
		if w.Steps == nil {
			w.Steps = []ActionStep{}
		}
	}
	return json.Marshal(w)
}

// UnmarshalJSON reads the tagged form as well as the legacy shapes: a bare
// list of steps, and an ad copy object identified by its "type" field.
func (s *ActionSpec) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*s = NewStepsSpec()
		return nil
	}
	if trimmed[0] == '[' {
		var steps []ActionStep
		if err := json.Unmarshal(trimmed, &steps); err != nil {
			return fmt.Errorf("decode action steps: %w", err)
		}
		*s = NewStepsSpec(steps...)
		return nil
	}

	var w actionSpecWire
	if err := json.Unmarshal(trimmed, &w); err != nil {
		return fmt.Errorf("decode action specification: %w", err)
	}
	out := ActionSpec{
		EditHistory:     w.EditHistory,
		RejectionReason: w.RejectionReason,
		RejectedAt:      w.RejectedAt,
	}
	if ActionSpecKind(w.Type) == ActionSpecAdCopy {
		out.Kind = ActionSpecAdCopy
		out.AdCopy = w.AdCopyChange
		if out.AdCopy == nil {
			out.AdCopy = &AdCopyChange{}
		}
	} else {
		out.Kind = ActionSpecSteps
		out.Steps = w.Steps
	}
	*s = out
	return nil
}
