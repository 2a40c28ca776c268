package profile

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"foodhive/internal/testutil"
)

func TestPreferences(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	repo := NewRepository(store)

	t.Run("Defaults", func(t *testing.T) {
		prefs, err := repo.Preferences(ctx, "u1")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if prefs.Diet != "none" || !prefs.ExpirationAlerts || !prefs.DailyTip || len(prefs.Exclusions) != 0 {
			t.Errorf("unexpected defaults %+v", prefs)
		}
	})

	t.Run("SaveAndRead", func(t *testing.T) {
		err := repo.SavePreferences(ctx, "u1", Preferences{
			Diet:       " Vegetarian ",
			Exclusions: []string{"nuts", " ", "shellfish"},
			DailyTip:   true,
		})
		if err != nil {
			t.Fatalf("SavePreferences failed: %v", err)
		}
		prefs, _ := repo.Preferences(ctx, "u1")
		if prefs.Diet != "vegetarian" {
			t.Errorf("Expected normalised diet, got %q", prefs.Diet)
		}
		if len(prefs.Exclusions) != 2 || prefs.Exclusions[1] != "shellfish" {
			t.Errorf("unexpected exclusions %v", prefs.Exclusions)
		}
		if prefs.ExpirationAlerts {
			t.Error("Expected expiration alerts to be off")
		}
	})

	t.Run("CommaSeparatedExclusions", func(t *testing.T) {
		store.Set(ctx, "u2", "preferences", "settings", map[string]any{"exclusions": "nuts, dairy"})
		prefs, _ := repo.Preferences(ctx, "u2")
		if len(prefs.Exclusions) != 2 || prefs.Exclusions[1] != "dairy" {
			t.Errorf("unexpected exclusions %v", prefs.Exclusions)
		}
		if prefs.Diet != "none" || !prefs.DailyTip {
			t.Errorf("missing fields should default: %+v", prefs)
		}
	})
}

func TestProfile(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(testutil.NewStore(t))

	p, err := repo.Profile(ctx, "u1")
	if err != nil || p != (Profile{}) {
		t.Fatalf("Expected empty profile, got %+v, %v", p, err)
	}

	if err := repo.SaveProfile(ctx, "u1", Profile{DisplayName: " Ana ", Email: "ana@example.com"}); err != nil {
		t.Fatalf("SaveProfile failed: %v", err)
	}
	p, _ = repo.Profile(ctx, "u1")
	if p.DisplayName != "Ana" || p.Email != "ana@example.com" {
		t.Errorf("unexpected profile %+v", p)
	}
}

type fakeObjects struct {
	key  string
	err  error
	data []byte
}

func (f *fakeObjects) Put(_ context.Context, key, _ string, data []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.key = key
	f.data = data
	return "https://cdn.example.com/" + key, nil
}

func TestAvatarUpload(t *testing.T) {
	ctx := context.Background()

	t.Run("UpdatesProfile", func(t *testing.T) {
		repo := NewRepository(testutil.NewStore(t))
		repo.SaveProfile(ctx, "u1", Profile{DisplayName: "Ana"})
		objects := &fakeObjects{}
		svc := NewAvatarService(objects, repo)

		url, err := svc.Upload(ctx, "u1", "image/png", []byte("png"))
		if err != nil {
			t.Fatalf("Upload failed: %v", err)
		}
		if objects.key != "avatars/u1.png" {
			t.Errorf("unexpected key %q", objects.key)
		}
		p, _ := repo.Profile(ctx, "u1")
		if p.AvatarURL != url || p.DisplayName != "Ana" {
			t.Errorf("profile not merged: %+v", p)
		}
	})

	t.Run("CreatesProfile", func(t *testing.T) {
		repo := NewRepository(testutil.NewStore(t))
		svc := NewAvatarService(&fakeObjects{}, repo)
		if _, err := svc.Upload(ctx, "u9", "image/jpeg", []byte("jpg")); err != nil {
			t.Fatalf("Upload failed: %v", err)
		}
		p, _ := repo.Profile(ctx, "u9")
		if p.AvatarURL != "https://cdn.example.com/avatars/u9.jpg" {
			t.Errorf("unexpected avatar url %q", p.AvatarURL)
		}
	})

	t.Run("RejectsNonImages", func(t *testing.T) {
		svc := NewAvatarService(&fakeObjects{}, NewRepository(testutil.NewStore(t)))
		if _, err := svc.Upload(ctx, "u1", "text/plain", []byte("x")); err == nil {
			t.Error("Expected an error for text upload")
		}
	})

	t.Run("UploadFailureLeavesProfile", func(t *testing.T) {
		repo := NewRepository(testutil.NewStore(t))
		svc := NewAvatarService(&fakeObjects{err: errors.New("boom")}, repo)
		if _, err := svc.Upload(ctx, "u1", "image/png", []byte("x")); err == nil {
			t.Fatal("Expected upload error")
		}
		p, _ := repo.Profile(ctx, "u1")
		if p.AvatarURL != "" {
			t.Errorf("profile should be untouched, got %+v", p)
		}
	})
}

func TestS3StorePut(t *testing.T) {
	var gotPath, gotMethod, gotACL, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotACL = r.Header.Get("X-Amz-Acl")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	store, err := NewS3Store(context.Background(), S3Options{
		Bucket:    "avatars-bucket",
		Region:    "us-east-1",
		Endpoint:  server.URL,
		AccessKey: "key",
		SecretKey: "secret",
	})
	if err != nil {
		t.Fatalf("NewS3Store failed: %v", err)
	}

	url, err := store.Put(context.Background(), "avatars/u1.png", "image/png", []byte("image-bytes"))
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	if gotMethod != http.MethodPut || gotPath != "/avatars-bucket/avatars/u1.png" {
		t.Errorf("unexpected request %s %s", gotMethod, gotPath)
	}
	if gotACL != "public-read" {
		t.Errorf("Expected public-read acl, got %q", gotACL)
	}
	if !strings.Contains(gotBody, "image-bytes") {
		t.Errorf("unexpected body %q", gotBody)
	}
	if url != "https://avatars-bucket.s3.us-east-1.amazonaws.com/avatars/u1.png" {
		t.Errorf("unexpected url %q", url)
	}

	store.publicURL = "https://cdn.example.com"
	if got := store.objectURL("k"); got != "https://cdn.example.com/k" {
		t.Errorf("unexpected public url %q", got)
	}
}
