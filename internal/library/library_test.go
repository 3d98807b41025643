package library

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

func TestSaveAndGet(t *testing.T) {
	lib := New()
	saved := lib.Save(KindScene, "rooftop", "data:image/png;base64,AAAA")

	if saved.ID == "" {
		t.Fatal("saved element has empty ID")
	}
	if saved.CreatedAt.IsZero() {
		t.Error("saved element has zero CreatedAt")
	}

	got, err := lib.Get(saved.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got != saved {
		t.Errorf("Get = %+v, want %+v", got, saved)
	}
}

func TestGetUnknownID(t *testing.T) {
	if _, err := New().Get("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListFiltersByKind(t *testing.T) {
	lib := New()
	lib.Save(KindScene, "scene one", "url")
	lib.Save(KindObject, "hoodie", "url")
	lib.Save(KindObject, "jeans", "url")

	if got := len(lib.List("")); got != 3 {
		t.Errorf("List(all) = %d elements, want 3", got)
	}
	if got := len(lib.List(KindObject)); got != 2 {
		t.Errorf("List(object) = %d elements, want 2", got)
	}
	if got := len(lib.List(KindLocation)); got != 0 {
		t.Errorf("List(location) = %d elements, want 0", got)
	}
}

func TestDelete(t *testing.T) {
	lib := New()
	saved := lib.Save(KindModel, "model", "url")

	if err := lib.Delete(saved.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := lib.Get(saved.ID); !errors.Is(err, ErrNotFound) {
		t.Error("element still present after Delete")
	}
	if err := lib.Delete(saved.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete err = %v, want ErrNotFound", err)
	}
}

func TestKindValid(t *testing.T) {
	for _, kind := range []Kind{KindScene, KindModel, KindObject, KindLocation} {
		if !kind.Valid() {
			t.Errorf("Kind(%q).Valid() = false, want true", kind)
		}
	}
	if Kind("garment").Valid() {
		t.Error(`Kind("garment").Valid() = true, want false`)
	}
}

func TestConcurrentAccess(t *testing.T) {
	lib := New()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			saved := lib.Save(KindObject, fmt.Sprintf("item %d", n), "url")
			lib.List(KindObject)
			if _, err := lib.Get(saved.ID); err != nil {
				t.Errorf("Get after Save returned error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if got := len(lib.List(KindObject)); got != 16 {
		t.Errorf("List = %d elements, want 16", got)
	}
}
