package subscription

import (
	"context"

	"github.com/google/uuid"

	"github.com/vidtube/vidtube/internal/apperrors"
	"github.com/vidtube/vidtube/internal/repository"
)

type SubscriptionService struct {
	subscriptionRepo repository.SubscriptionRepo
}

func NewService(subscriptionRepo repository.SubscriptionRepo) *SubscriptionService {
	return &SubscriptionService{subscriptionRepo: subscriptionRepo}
}

// Toggle flips the subscription to the channel.
// Returns true when subscribed after the call
func (s *SubscriptionService) Toggle(ctx context.Context, subscriberID uuid.UUID, channelID uuid.UUID) (bool, error) {
	if subscriberID == channelID {
		return false, apperrors.ErrSelfSubscription
	}

	return s.subscriptionRepo.Toggle(ctx, subscriberID, channelID)
}

func (s *SubscriptionService) CountSubscribers(ctx context.Context, channelID uuid.UUID) (int64, error) {
	return s.subscriptionRepo.CountSubscribers(ctx, channelID)
}
