package grants

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/campushq/campus-console/internal/permission"
)

func TestNotifierRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := &fakeStore{grants: []permission.Grant{
		{UserID: 7, ModuleID: 1, CategoryCode: "pedagogy", Permissions: permission.Set{Read: true}},
	}}
	c := NewCoordinator(store, &fakeEnqueuer{}, nil, nil)
	if _, err := c.Grants(context.Background(), 7); err != nil {
		t.Fatalf("Grants() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	n := NewNotifier(client, nil)
	go n.Listen(ctx, c)

	// The store gains a grant behind the coordinator's back.
	store.mu.Lock()
	store.grants = append(store.grants, permission.Grant{
		UserID: 7, ModuleID: 2, CategoryCode: "pedagogy", Permissions: permission.Set{Read: true},
	})
	store.mu.Unlock()

	// Publish until the subscriber picks it up; subscription setup races
	// with the first publish.
	deadline := time.After(2 * time.Second)
	for {
		if err := n.RefreshUser(context.Background(), 7); err != nil {
			t.Fatalf("RefreshUser() error = %v", err)
		}
		v, err := c.Grants(context.Background(), 7)
		if err != nil {
			t.Fatalf("Grants() error = %v", err)
		}
		if len(v.Grants) == 2 {
			return
		}
		select {
		case <-deadline:
			t.Fatal("view never refreshed from notification")
		case <-time.After(10 * time.Millisecond):
		}
	}
}
