package launch

import (
	"context"

	"github.com/rs/zerolog"
)

// SideChannelRef is an opaque handle an integration hands back to the
// caller, e.g. an inter-agent task id or a question-routing subscription.
type SideChannelRef struct {
	Integration string `json:"integration"`
	ID          string `json:"id"`
}

// Integration is one registered side-channel step that may extend a built
// descriptor. Apply takes and returns a descriptor by value so ordering
// stays explicit and a cancelled request leaves no half-applied state.
type Integration interface {
	// Name identifies the integration in refs and logs.
	Name() string

	// RequiresCorrelation reports whether the integration needs a
	// correlation id; without one it is skipped, not errored.
	RequiresCorrelation() bool

	// Apply transforms the descriptor and optionally returns a
	// side-channel reference for the caller.
	Apply(ctx context.Context, desc Descriptor, ov Overrides) (Descriptor, *SideChannelRef, error)
}

// runIntegrations applies each integration in registration order. A failing
// integration is skipped with its input descriptor preserved; descriptor
// construction never fails on a side channel.
func runIntegrations(ctx context.Context, integrations []Integration, desc Descriptor, ov Overrides, logger zerolog.Logger) (Descriptor, []SideChannelRef) {
	var refs []SideChannelRef
	for _, integ := range integrations {
		if integ.RequiresCorrelation() && ov.CorrelationID == "" {
			logger.Debug().Str("integration", integ.Name()).Msg("No correlation id, skipping integration")
			continue
		}

		next, ref, err := integ.Apply(ctx, desc.clone(), ov)
		if err != nil {
			logger.Warn().Err(err).Str("integration", integ.Name()).Msg("Integration failed, skipping")
			continue
		}

		desc = next
		if ref != nil {
			refs = append(refs, *ref)
		}
	}
	return desc, refs
}
