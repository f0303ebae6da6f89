package repository

import (
	"context"
	"time"

	"github.com/sihotmehalev/JCE-Community-Project-sub001/internal/models"
	"github.com/sihotmehalev/JCE-Community-Project-sub001/internal/store"
)

const matchesCollection = "matches"

// MatchRepository stores match documents. The canonical shape keys the match
// document by the requester id and carries explicit requesterId/volunteerId
// fields, so the requester side reads its own document directly and the
// volunteer side locates it with a query.
type MatchRepository struct {
	store store.Store
}

func NewMatchRepository(st store.Store) *MatchRepository {
	return &MatchRepository{store: st}
}

func matchPath(requesterID string) string {
	return matchesCollection + "/" + requesterID
}

// CreateMatch creates a match record in pending state
func (r *MatchRepository) CreateMatch(ctx context.Context, requesterID, volunteerID string, scheduledTime time.Time) (*models.Match, error) {
	match := &models.Match{
		MatchID:       requesterID,
		RequesterID:   requesterID,
		VolunteerID:   volunteerID,
		Status:        models.MatchPending,
		ScheduledTime: scheduledTime,
	}
	if err := r.store.Set(ctx, matchPath(requesterID), match, false); err != nil {
		return nil, err
	}
	return match, nil
}

// GetMatchByRequester retrieves the requester's match, nil if unmatched
func (r *MatchRepository) GetMatchByRequester(ctx context.Context, requesterID string) (*models.Match, error) {
	snap, err := r.store.Get(ctx, matchPath(requesterID))
	if err != nil {
		return nil, err
	}
	if !snap.Exists {
		return nil, nil
	}

	var match models.Match
	if err := snap.DataTo(&match); err != nil {
		return nil, err
	}
	return &match, nil
}

// GetMatchByVolunteer retrieves the volunteer's match, nil if unmatched
func (r *MatchRepository) GetMatchByVolunteer(ctx context.Context, volunteerID string) (*models.Match, error) {
	snaps, err := r.store.Query(ctx, store.Query{Collection: matchesCollection, Limit: 1}.
		Where("volunteerId", "==", volunteerID))
	if err != nil {
		return nil, err
	}
	if len(snaps) == 0 {
		return nil, nil
	}

	var match models.Match
	if err := snaps[0].DataTo(&match); err != nil {
		return nil, err
	}
	return &match, nil
}

// GetMatchForUser locates the match a user belongs to from either side
func (r *MatchRepository) GetMatchForUser(ctx context.Context, userID string) (*models.Match, error) {
	match, err := r.GetMatchByRequester(ctx, userID)
	if err != nil || match != nil {
		return match, err
	}
	return r.GetMatchByVolunteer(ctx, userID)
}

// UpdateStatus sets the match lifecycle status
func (r *MatchRepository) UpdateStatus(ctx context.Context, requesterID string, status models.MatchStatus) error {
	return r.store.Update(ctx, matchPath(requesterID), []store.Update{
		{Path: "status", Value: status},
	})
}

// SetTyping writes one party's typing flag and last-typing timestamp. Each
// party only ever touches its own field paths, so concurrent writers cannot
// conflict.
func (r *MatchRepository) SetTyping(ctx context.Context, requesterID, userID string, typing bool) error {
	updates := []store.Update{
		{Path: "typing." + userID, Value: typing},
	}
	if typing {
		updates = append(updates, store.Update{Path: "lastTyping." + userID, Value: store.ServerTimestamp})
	}
	return r.store.Update(ctx, matchPath(requesterID), updates)
}

// SubscribeByRequester listens to the requester-keyed match document
func (r *MatchRepository) SubscribeByRequester(ctx context.Context, requesterID string, fn store.DocHandler, errFn store.ErrHandler) (store.Subscription, error) {
	return r.store.SubscribeDoc(ctx, matchPath(requesterID), fn, errFn)
}

// SubscribeByVolunteer listens to the volunteer's match via query
func (r *MatchRepository) SubscribeByVolunteer(ctx context.Context, volunteerID string, fn store.QueryHandler, errFn store.ErrHandler) (store.Subscription, error) {
	q := store.Query{Collection: matchesCollection, Limit: 1}.
		Where("volunteerId", "==", volunteerID)
	return r.store.SubscribeQuery(ctx, q, fn, errFn)
}
