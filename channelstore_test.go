package main

import "testing"

func TestChannelStoreGetOrCreate(t *testing.T) {
	s := NewChannelStore()

	ch, created := s.GetOrCreate("#general")
	if !created {
		t.Fatal("expected new channel to report created=true")
	}

	ch2, created2 := s.GetOrCreate("#general")
	if created2 {
		t.Error("expected second call to report created=false")
	}
	if ch != ch2 {
		t.Error("expected the same *Channel both times")
	}
}

func TestChannelStoreDeleteIfEmpty(t *testing.T) {
	s := NewChannelStore()
	ch, _ := s.GetOrCreate("#general")
	ch.Join(1, true)

	s.DeleteIfEmpty("#general")
	if _, ok := s.Get("#general"); !ok {
		t.Fatal("non-empty channel should not be deleted")
	}

	ch.Part(1)
	s.DeleteIfEmpty("#general")
	if _, ok := s.Get("#general"); ok {
		t.Error("empty channel should have been deleted")
	}
}
