package services

import (
	"context"
	"errors"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/sihotmehalev/JCE-Community-Project-sub001/internal/config"
	"github.com/sihotmehalev/JCE-Community-Project-sub001/internal/models"
	"github.com/sihotmehalev/JCE-Community-Project-sub001/internal/store"
)

var (
	// ErrSessionEnded means a probe hit a terminal permission failure and all
	// user/role state was cleared.
	ErrSessionEnded = errors.New("session ended")

	// ErrStaleResolution means the authenticated identity changed while the
	// probe sequence was in flight; nothing was committed.
	ErrStaleResolution = errors.New("stale role resolution discarded")
)

// Candidate is one prioritized probe location
type Candidate struct {
	Path string
	Role models.Role
}

// ExistsFunc reports whether a document exists at the given path
type ExistsFunc func(ctx context.Context, path string) (bool, error)

// ExistsViaStore adapts a Store into the exists capability the resolver probes with
func ExistsViaStore(st store.Store) ExistsFunc {
	return func(ctx context.Context, path string) (bool, error) {
		snap, err := st.Get(ctx, path)
		if err != nil {
			return false, err
		}
		return snap.Exists, nil
	}
}

// ResolveRole runs the prioritized probe sequence for a user. The first
// matching location wins and resolution stops there. A single failed probe is
// logged and skipped; a permission failure is terminal and returns
// ErrSessionEnded. If no candidate matches, the returned role is empty.
func ResolveRole(ctx context.Context, userID string, candidates []Candidate, exists ExistsFunc) (models.Role, error) {
	for _, candidate := range candidates {
		found, err := exists(ctx, candidate.Path)
		if err != nil {
			if store.IsPermissionDenied(err) {
				return "", ErrSessionEnded
			}
			log.WithError(err).WithFields(log.Fields{
				"userId": userID,
				"path":   candidate.Path,
			}).Warn("role probe failed, trying next candidate")
			continue
		}
		if found {
			return candidate.Role, nil
		}
	}
	return "", nil
}

// Resolution is the committed outcome of a probe sequence. An empty Role
// means authenticated but role-less, surfaced to callers as a warning state.
type Resolution struct {
	UserID string
	Role   models.Role
}

// RoleResolver determines a user's role by probing candidate profile
// locations in priority order. Probe sequences and committed outcomes are
// tracked per identity: a sequence is discarded only when that same identity
// was invalidated or re-resolved while it was in flight, never because an
// unrelated user resolved concurrently.
type RoleResolver struct {
	schema *config.Schema
	exists ExistsFunc

	mu      sync.Mutex
	seqs    map[string]uint64
	current map[string]*Resolution
}

func NewRoleResolver(schema *config.Schema, exists ExistsFunc) *RoleResolver {
	return &RoleResolver{
		schema:  schema,
		exists:  exists,
		seqs:    make(map[string]uint64),
		current: make(map[string]*Resolution),
	}
}

// Candidates builds the prioritized probe list for a user from the schema
func (r *RoleResolver) Candidates(userID string) []Candidate {
	candidates := make([]Candidate, 0, len(r.schema.ProbeOrder))
	for _, role := range r.schema.ProbeOrder {
		collection := r.schema.CollectionFor(role)
		if collection == "" {
			continue
		}
		candidates = append(candidates, Candidate{
			Path: collection + "/" + userID,
			Role: role,
		})
	}
	return candidates
}

// Resolve probes for the user's role and commits the outcome, unless the
// identity changed while probes were in flight.
func (r *RoleResolver) Resolve(ctx context.Context, userID string) (*Resolution, error) {
	r.mu.Lock()
	r.seqs[userID]++
	seq := r.seqs[userID]
	r.mu.Unlock()

	role, err := ResolveRole(ctx, userID, r.Candidates(userID), r.exists)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.seqs[userID] != seq {
		return nil, ErrStaleResolution
	}
	if err != nil {
		if errors.Is(err, ErrSessionEnded) {
			delete(r.current, userID)
		}
		return nil, err
	}

	if role == "" {
		log.WithField("userId", userID).Warn("authenticated user matched no role location")
	}
	resolution := &Resolution{UserID: userID, Role: role}
	r.current[userID] = resolution
	return resolution, nil
}

// Invalidate clears the user's committed state and discards their in-flight
// probe sequences. Called on sign-out; other identities are unaffected.
func (r *RoleResolver) Invalidate(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seqs[userID]++
	delete(r.current, userID)
}

// Current returns the user's last committed resolution, nil if none
func (r *RoleResolver) Current(userID string) *Resolution {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current[userID]
}
