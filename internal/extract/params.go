package extract

// GenerationParams are the sampling settings sent to a completion service.
type GenerationParams struct {
	MaxTokens         int      `json:"max_tokens"`
	Temperature       float64  `json:"temperature"`
	TopP              float64  `json:"top_p"`
	FrequencyPenalty  float64  `json:"frequency_penalty"`
	PresencePenalty   float64  `json:"presence_penalty"`
	RepetitionPenalty float64  `json:"repetition_penalty"`
	Stop              []string `json:"stop,omitempty"`
}

// DefaultParams returns the documented generation defaults.
func DefaultParams() GenerationParams {
	return GenerationParams{
		MaxTokens:         100,
		Temperature:       0.25,
		TopP:              0.95,
		FrequencyPenalty:  0.5,
		PresencePenalty:   1.2,
		RepetitionPenalty: 1.2,
	}
}

// ParamsOverride carries caller-supplied settings; nil fields keep the base value.
type ParamsOverride struct {
	MaxTokens         *int     `json:"max_tokens,omitempty" validate:"omitempty,min=1"`
	Temperature       *float64 `json:"temperature,omitempty" validate:"omitempty,min=0,max=2"`
	TopP              *float64 `json:"top_p,omitempty" validate:"omitempty,gt=0,max=1"`
	FrequencyPenalty  *float64 `json:"frequency_penalty,omitempty" validate:"omitempty,min=-2,max=2"`
	PresencePenalty   *float64 `json:"presence_penalty,omitempty" validate:"omitempty,min=-2,max=2"`
	RepetitionPenalty *float64 `json:"repetition_penalty,omitempty" validate:"omitempty,gt=0"`
	Stop              []string `json:"stop,omitempty"`
}

// Apply returns base with every non-nil override field replaced.
func (o ParamsOverride) Apply(base GenerationParams) GenerationParams {
	if o.MaxTokens != nil {
		base.MaxTokens = *o.MaxTokens
	}
	if o.Temperature != nil {
		base.Temperature = *o.Temperature
	}
	if o.TopP != nil {
		base.TopP = *o.TopP
	}
	if o.FrequencyPenalty != nil {
		base.FrequencyPenalty = *o.FrequencyPenalty
	}
	if o.PresencePenalty != nil {
		base.PresencePenalty = *o.PresencePenalty
	}
	if o.RepetitionPenalty != nil {
		base.RepetitionPenalty = *o.RepetitionPenalty
	}
	if o.Stop != nil {
		base.Stop = append([]string(nil), o.Stop...)
	}
	return base
}
