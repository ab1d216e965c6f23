package models

// ThinkFit is optional structured metadata describing how a project maps onto
// identity (soul), reasoning (mind) and interface (body). Moderation never
// inspects it.
type ThinkFit struct {
	Soul *ThinkFitSoul `json:"soul,omitempty"`
	Mind *ThinkFitMind `json:"mind,omitempty"`
	Body *ThinkFitBody `json:"body,omitempty"`
}

// ThinkFitSoul describes the identity anchor.
type ThinkFitSoul struct {
	HasWalletAuth  string `json:"has_wallet_auth" validate:"omitempty,oneof=yes no planned"`
	IdentityAnchor string `json:"identity_anchor,omitempty"`
}

// ThinkFitMind describes where reasoning runs.
type ThinkFitMind struct {
	MindRuntime string `json:"mind_runtime" validate:"omitempty,oneof=local server hybrid"`
	Tooling     string `json:"tooling,omitempty"`
}

// ThinkFitBody describes the user-facing surface.
type ThinkFitBody struct {
	InterfaceType string   `json:"interface_type" validate:"omitempty,oneof=web desktop extension api mobile"`
	Surfaces      []string `json:"surfaces,omitempty"`
}
