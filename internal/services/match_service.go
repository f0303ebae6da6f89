package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/sihotmehalev/JCE-Community-Project-sub001/internal/models"
	"github.com/sihotmehalev/JCE-Community-Project-sub001/internal/repository"
)

// ErrNotMatched is returned when an operation needs a match and none exists
var ErrNotMatched = errors.New("user has no match")

type MatchService struct {
	matches  *repository.MatchRepository
	notifier *Notifier
}

// NewMatchService creates the match lifecycle service. notifier may be nil.
func NewMatchService(matches *repository.MatchRepository, notifier *Notifier) *MatchService {
	return &MatchService{
		matches:  matches,
		notifier: notifier,
	}
}

// CreateMatch links a requester to a volunteer (admin action) and notifies
// both parties.
func (s *MatchService) CreateMatch(ctx context.Context, requesterID, volunteerID string, scheduledTime time.Time) (*models.Match, error) {
	if requesterID == "" || volunteerID == "" {
		return nil, errors.New("both requester and volunteer ids are required")
	}
	if requesterID == volunteerID {
		return nil, errors.New("cannot match a user with themselves")
	}

	existing, err := s.matches.GetMatchByRequester(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Status != models.MatchCanceled {
		return nil, errors.New("requester already has a match")
	}

	match, err := s.matches.CreateMatch(ctx, requesterID, volunteerID, scheduledTime)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		for _, userID := range []string{requesterID, volunteerID} {
			if err := s.notifier.Notify(ctx, userID, "You have a new match", "/chat"); err != nil {
				log.WithError(err).WithField("userId", userID).Error("match notification failed")
			}
		}
	}
	return match, nil
}

// GetMatchForUser returns the user's match from either side, nil if unmatched
func (s *MatchService) GetMatchForUser(ctx context.Context, userID string) (*models.Match, error) {
	return s.matches.GetMatchForUser(ctx, userID)
}

// UpdateStatus applies a lifecycle transition requested by one of the match
// parties. Canceled is absorbing; illegal transitions are rejected.
func (s *MatchService) UpdateStatus(ctx context.Context, userID string, to models.MatchStatus) (*models.Match, error) {
	match, err := s.matches.GetMatchForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if match == nil {
		return nil, ErrNotMatched
	}
	if !models.TransitionAllowed(match.Status, to) {
		return nil, fmt.Errorf("illegal match transition %s -> %s", match.Status, to)
	}

	if err := s.matches.UpdateStatus(ctx, match.RequesterID, to); err != nil {
		return nil, err
	}
	match.Status = to
	return match, nil
}
