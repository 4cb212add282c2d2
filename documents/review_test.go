package documents

import (
	"context"
	"testing"
)

func TestStore_Reviews(t *testing.T) {
	ctx := context.Background()
	store, blobs := newTestStore(t)

	if review, err := store.LoadReview(ctx, "alice"); err != nil || review != (Review{}) {
		t.Fatalf("expected zero review, got %#v err=%v", review, err)
	}
	if err := store.SaveReview(ctx, "alice", Review{Rating: 5, Message: "great"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	_ = store.SaveReview(ctx, "bob", Review{Rating: 0, Message: "draft"})
	_ = store.SaveReview(ctx, "carol", Review{Rating: 3.5, Message: "ok"})
	_ = blobs.Put(ctx, "dave/Review.json", []byte("garbage"), ContentTypeJSON)
	_ = blobs.Put(ctx, "erin/p1/Review.json", []byte(`{"rating":4,"message":"nested"}`), ContentTypeJSON)
	_ = blobs.Put(ctx, "frank/p1/stepTree.json", []byte(`{}`), ContentTypeJSON)

	review, err := store.LoadReview(ctx, "alice")
	if err != nil || review.Rating != 5 || review.Message != "great" {
		t.Fatalf("unexpected review %#v err=%v", review, err)
	}

	all, err := store.ListReviews(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 reviews, got %#v", all)
	}
	if all[0].Username != "alice" || all[1].Username != "carol" || all[1].Rating != 3.5 {
		t.Fatalf("unexpected reviews %#v", all)
	}
}

func TestReviewOwner(t *testing.T) {
	cases := map[string]bool{
		"alice/Review.json":    true,
		"alice/p/Review.json":  false,
		"Review.json":          false,
		"alice/Review.json.bk": false,
	}
	for key, want := range cases {
		if _, ok := ReviewOwner(key); ok != want {
			t.Fatalf("%s: expected %v", key, want)
		}
	}
}
