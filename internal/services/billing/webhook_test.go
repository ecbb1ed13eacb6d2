package billing

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/magabrotheeeer/taskshare/internal/cache"
	"github.com/magabrotheeeer/taskshare/internal/lib/apperr"
	"github.com/magabrotheeeer/taskshare/internal/models"
	"github.com/magabrotheeeer/taskshare/internal/paymentprovider"
	"github.com/magabrotheeeer/taskshare/internal/storage/repository"
)

const testUserUID = "8d6f0a34-55c1-4b57-9c5e-5a0e7c1d2f10"

func checkoutEvent(id, userID, subRef string) *paymentprovider.Event {
	return &paymentprovider.Event{
		ID:              id,
		Kind:            paymentprovider.EventCheckoutCompleted,
		ProviderType:    "checkout.session.completed",
		UserID:          userID,
		SubscriptionRef: subRef,
	}
}

func TestWebhookService_HandleWebhook(t *testing.T) {
	upgraded := &models.User{UUID: testUserUID, Email: "alice@example.com", Username: "alice", Plan: models.PlanPremium}
	payload := []byte(`{}`)

	tests := []struct {
		name       string
		setupMocks func(*MockProvider, *MockUserStore, *MockEventStore, *MockNotifier)
		wantKind   apperr.Kind
		wantReason apperr.Reason
	}{
		{
			name: "checkout completed upgrades user",
			setupMocks: func(p *MockProvider, u *MockUserStore, e *MockEventStore, n *MockNotifier) {
				p.On("ParseWebhook", mock.Anything, payload, "sig").Return(checkoutEvent("evt_1", testUserUID, "sub_1"), nil).Once()
				e.On("IsProcessed", mock.Anything, "evt_1").Return(false, nil).Once()
				u.On("UpgradeToPremium", mock.Anything, testUserUID, "sub_1").Return(upgraded, nil).Once()
				n.On("Publish", mock.Anything, models.Notification{
					Kind:     models.NotificationPremiumActivated,
					Email:    "alice@example.com",
					Username: "alice",
				}).Return(nil).Once()
				e.On("MarkProcessed", mock.Anything, "evt_1", DefaultEventTTL).Return(nil).Once()
			},
		},
		{
			name: "invalid signature",
			setupMocks: func(p *MockProvider, _ *MockUserStore, _ *MockEventStore, _ *MockNotifier) {
				p.On("ParseWebhook", mock.Anything, payload, "sig").
					Return(nil, fmt.Errorf("verify: %w", paymentprovider.ErrInvalidSignature)).Once()
			},
			wantKind:   apperr.KindBadRequest,
			wantReason: apperr.ReasonInvalidSignature,
		},
		{
			name: "unparsable event",
			setupMocks: func(p *MockProvider, _ *MockUserStore, _ *MockEventStore, _ *MockNotifier) {
				p.On("ParseWebhook", mock.Anything, payload, "sig").
					Return(nil, fmt.Errorf("decode: %w", paymentprovider.ErrMalformedEvent)).Once()
			},
			wantKind:   apperr.KindBadRequest,
			wantReason: apperr.ReasonMalformedEvent,
		},
		{
			name: "missing user metadata",
			setupMocks: func(p *MockProvider, _ *MockUserStore, e *MockEventStore, _ *MockNotifier) {
				p.On("ParseWebhook", mock.Anything, payload, "sig").Return(checkoutEvent("evt_2", "", "sub_1"), nil).Once()
				e.On("IsProcessed", mock.Anything, "evt_2").Return(false, nil).Once()
			},
			wantKind:   apperr.KindBadRequest,
			wantReason: apperr.ReasonMalformedEvent,
		},
		{
			name: "missing subscription",
			setupMocks: func(p *MockProvider, _ *MockUserStore, e *MockEventStore, _ *MockNotifier) {
				p.On("ParseWebhook", mock.Anything, payload, "sig").Return(checkoutEvent("evt_3", testUserUID, ""), nil).Once()
				e.On("IsProcessed", mock.Anything, "evt_3").Return(false, nil).Once()
			},
			wantKind:   apperr.KindBadRequest,
			wantReason: apperr.ReasonMalformedEvent,
		},
		{
			name: "user id is not a uuid",
			setupMocks: func(p *MockProvider, _ *MockUserStore, e *MockEventStore, _ *MockNotifier) {
				p.On("ParseWebhook", mock.Anything, payload, "sig").Return(checkoutEvent("evt_4", "42", "sub_1"), nil).Once()
				e.On("IsProcessed", mock.Anything, "evt_4").Return(false, nil).Once()
			},
			wantKind:   apperr.KindBadRequest,
			wantReason: apperr.ReasonMalformedEvent,
		},
		{
			name: "duplicate event acknowledged without work",
			setupMocks: func(p *MockProvider, _ *MockUserStore, e *MockEventStore, _ *MockNotifier) {
				p.On("ParseWebhook", mock.Anything, payload, "sig").Return(checkoutEvent("evt_1", testUserUID, "sub_1"), nil).Once()
				e.On("IsProcessed", mock.Anything, "evt_1").Return(true, nil).Once()
			},
		},
		{
			name: "unknown user acknowledged",
			setupMocks: func(p *MockProvider, u *MockUserStore, e *MockEventStore, _ *MockNotifier) {
				p.On("ParseWebhook", mock.Anything, payload, "sig").Return(checkoutEvent("evt_5", testUserUID, "sub_1"), nil).Once()
				e.On("IsProcessed", mock.Anything, "evt_5").Return(false, nil).Once()
				u.On("UpgradeToPremium", mock.Anything, testUserUID, "sub_1").Return(nil, repository.ErrNotFound).Once()
				e.On("MarkProcessed", mock.Anything, "evt_5", DefaultEventTTL).Return(nil).Once()
			},
		},
		{
			name: "storage error is retryable",
			setupMocks: func(p *MockProvider, u *MockUserStore, e *MockEventStore, _ *MockNotifier) {
				p.On("ParseWebhook", mock.Anything, payload, "sig").Return(checkoutEvent("evt_6", testUserUID, "sub_1"), nil).Once()
				e.On("IsProcessed", mock.Anything, "evt_6").Return(false, nil).Once()
				u.On("UpgradeToPremium", mock.Anything, testUserUID, "sub_1").Return(nil, errors.New("conn reset")).Once()
			},
			wantKind:   apperr.KindInternal,
			wantReason: apperr.ReasonStorage,
		},
		{
			name: "dedup store failure does not block upgrade",
			setupMocks: func(p *MockProvider, u *MockUserStore, e *MockEventStore, n *MockNotifier) {
				p.On("ParseWebhook", mock.Anything, payload, "sig").Return(checkoutEvent("evt_7", testUserUID, "sub_1"), nil).Once()
				e.On("IsProcessed", mock.Anything, "evt_7").Return(false, errors.New("redis down")).Once()
				u.On("UpgradeToPremium", mock.Anything, testUserUID, "sub_1").Return(upgraded, nil).Once()
				n.On("Publish", mock.Anything, mock.Anything).Return(errors.New("channel closed")).Once()
				e.On("MarkProcessed", mock.Anything, "evt_7", DefaultEventTTL).Return(errors.New("redis down")).Once()
			},
		},
		{
			name: "subscription canceled keeps plan",
			setupMocks: func(p *MockProvider, _ *MockUserStore, e *MockEventStore, _ *MockNotifier) {
				p.On("ParseWebhook", mock.Anything, payload, "sig").Return(&paymentprovider.Event{
					ID:              "evt_8",
					Kind:            paymentprovider.EventSubscriptionCanceled,
					UserID:          testUserUID,
					SubscriptionRef: "sub_1",
				}, nil).Once()
				e.On("IsProcessed", mock.Anything, "evt_8").Return(false, nil).Once()
				e.On("MarkProcessed", mock.Anything, "evt_8", DefaultEventTTL).Return(nil).Once()
			},
		},
		{
			name: "other event ignored",
			setupMocks: func(p *MockProvider, _ *MockUserStore, e *MockEventStore, _ *MockNotifier) {
				p.On("ParseWebhook", mock.Anything, payload, "sig").Return(&paymentprovider.Event{
					ID:   "evt_9",
					Kind: paymentprovider.EventOther,
				}, nil).Once()
				e.On("IsProcessed", mock.Anything, "evt_9").Return(false, nil).Once()
				e.On("MarkProcessed", mock.Anything, "evt_9", DefaultEventTTL).Return(nil).Once()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := new(MockProvider)
			users := new(MockUserStore)
			events := new(MockEventStore)
			notifier := new(MockNotifier)
			tt.setupMocks(provider, users, events, notifier)

			svc := NewWebhookService(newNoopLogger(), users, provider, events, notifier, nil, 0)
			err := svc.HandleWebhook(context.Background(), payload, "sig")
			if tt.wantKind != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, apperr.KindOf(err))
				assert.Equal(t, tt.wantReason, apperr.ReasonOf(err))
			} else {
				require.NoError(t, err)
			}

			provider.AssertExpectations(t)
			users.AssertExpectations(t)
			events.AssertExpectations(t)
			notifier.AssertExpectations(t)
		})
	}
}

func TestWebhookService_DuplicateDeliveryWithStripeAndRedis(t *testing.T) {
	const secret = "whsec_test"
	mr := miniredis.RunT(t)
	store := &cache.Cache{Db: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
	t.Cleanup(func() { _ = store.Close() })

	provider, err := paymentprovider.NewStripeProvider(paymentprovider.StripeConfig{WebhookSecret: secret})
	require.NoError(t, err)

	users := new(MockUserStore)
	users.On("UpgradeToPremium", mock.Anything, testUserUID, "sub_1").
		Return(&models.User{UUID: testUserUID, Plan: models.PlanPremium}, nil).Once()

	svc := NewWebhookService(newNoopLogger(), users, provider, store, nil, nil, time.Hour)

	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload: []byte(`{"id":"evt_dup","object":"event","type":"checkout.session.completed",
			"data":{"object":{"id":"cs_1","object":"checkout.session",
			"metadata":{"userId":"` + testUserUID + `"},"subscription":"sub_1"}}}`),
		Secret:    secret,
		Timestamp: time.Now(),
		Scheme:    "v1",
	})

	for range 3 {
		require.NoError(t, svc.HandleWebhook(context.Background(), signed.Payload, signed.Header))
	}
	users.AssertNumberOfCalls(t, "UpgradeToPremium", 1)

	err = svc.HandleWebhook(context.Background(), signed.Payload, "t=1,v1=deadbeef")
	require.Error(t, err)
	assert.Equal(t, apperr.ReasonInvalidSignature, apperr.ReasonOf(err))
}
