package service

import (
	"context"
	"errors"
	"testing"

	"github.com/waveforge/waveforge/internal/domain"
	"github.com/waveforge/waveforge/internal/domain/catalog"
	"github.com/waveforge/waveforge/internal/domain/offer"
)

func offersFixtures() *stubStore {
	st := newStubStore()
	st.beats["b-1"] = &catalog.Beat{ID: "b-1", TenantID: "t-1", Title: "Midnight Run"}
	return st
}

func TestSubmitOfferPersistsAndNotifies(t *testing.T) {
	st := offersFixtures()
	n := &stubNotifier{}
	svc := NewOffers(st, n)

	o, err := svc.Submit(context.Background(), "t-1", "producer@example.com", offer.CreateRequest{
		BeatID: "b-1", Email: " buyer@example.com ", Name: "Ada",
		Amount: 150, Message: "exclusive?",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if o.Email != "buyer@example.com" {
		t.Fatalf("email = %q, want trimmed", o.Email)
	}
	if len(st.offers) != 1 {
		t.Fatalf("persisted %d offers", len(st.offers))
	}
	if len(n.notices) != 1 {
		t.Fatalf("sent %d notices", len(n.notices))
	}
	notice := n.notices[0]
	if notice.To != "producer@example.com" || notice.BeatTitle != "Midnight Run" || notice.Amount != 150 {
		t.Fatalf("notice %+v", notice)
	}
}

func TestSubmitOfferWithoutProducerEmailSkipsNotice(t *testing.T) {
	st := offersFixtures()
	n := &stubNotifier{}
	svc := NewOffers(st, n)

	if _, err := svc.Submit(context.Background(), "t-1", "", offer.CreateRequest{
		BeatID: "b-1", Email: "buyer@example.com", Amount: 50,
	}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if len(st.offers) != 1 {
		t.Fatal("offer must still be stored")
	}
	if len(n.notices) != 0 {
		t.Fatal("no notice without a producer address")
	}
}

func TestSubmitOfferValidates(t *testing.T) {
	svc := NewOffers(offersFixtures(), &stubNotifier{})
	ctx := context.Background()

	cases := []struct {
		name string
		req  offer.CreateRequest
	}{
		{"missing beat", offer.CreateRequest{Email: "a@b.c", Amount: 50}},
		{"missing email", offer.CreateRequest{BeatID: "b-1", Amount: 50}},
		{"bad email", offer.CreateRequest{BeatID: "b-1", Email: "nope", Amount: 50}},
		{"zero amount", offer.CreateRequest{BeatID: "b-1", Email: "a@b.c"}},
		{"negative amount", offer.CreateRequest{BeatID: "b-1", Email: "a@b.c", Amount: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Submit(ctx, "t-1", "", tc.req); !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestSubmitOfferUnknownBeat(t *testing.T) {
	svc := NewOffers(offersFixtures(), &stubNotifier{})

	_, err := svc.Submit(context.Background(), "t-1", "", offer.CreateRequest{
		BeatID: "b-missing", Email: "a@b.c", Amount: 50,
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
