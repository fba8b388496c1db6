package store

import (
	"context"
	"errors"
	"testing"

	"github.com/wconley/cratedig/internal/database"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate database: %v", err)
	}

	return New(db)
}

func TestGetOrCreateGenre(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	g, created, err := st.GetOrCreateGenre(ctx, "art rock")
	if err != nil {
		t.Fatalf("GetOrCreateGenre: %v", err)
	}
	if !created {
		t.Error("first call should report created")
	}

	again, created, err := st.GetOrCreateGenre(ctx, "Art Rock")
	if err != nil {
		t.Fatalf("second GetOrCreateGenre: %v", err)
	}
	if created {
		t.Error("case-variant name should match the existing row")
	}
	if again.ID != g.ID {
		t.Errorf("got id %q, want %q", again.ID, g.ID)
	}
	if again.Name != "art rock" {
		t.Errorf("canonical name = %q, want first-seen casing", again.Name)
	}
}

func TestFindGenreByNameMissing(t *testing.T) {
	st := setupTestStore(t)

	g, err := st.FindGenreByName(context.Background(), "nope")
	if err != nil {
		t.Fatalf("FindGenreByName: %v", err)
	}
	if g != nil {
		t.Errorf("got %+v, want nil", g)
	}
}

func TestGetOrCreateArtistNaturalKey(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	a, created, err := st.GetOrCreateArtist(ctx, "Radiohead", "rh1")
	if err != nil {
		t.Fatalf("GetOrCreateArtist: %v", err)
	}
	if !created {
		t.Error("first call should report created")
	}

	same, created, err := st.GetOrCreateArtist(ctx, "Radiohead", "rh1")
	if err != nil {
		t.Fatalf("repeat GetOrCreateArtist: %v", err)
	}
	if created || same.ID != a.ID {
		t.Errorf("repeat call created new row: created=%v id=%q want %q", created, same.ID, a.ID)
	}
}

func TestSetArtistExternalID(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	a, _, err := st.GetOrCreateArtist(ctx, "Thom Yorke", "")
	if err != nil {
		t.Fatalf("GetOrCreateArtist: %v", err)
	}
	if err := st.SetArtistExternalID(ctx, a.ID, "ty1"); err != nil {
		t.Fatalf("SetArtistExternalID: %v", err)
	}

	got, err := st.GetArtist(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetArtist: %v", err)
	}
	if got.ExternalID != "ty1" {
		t.Errorf("external id = %q, want ty1", got.ExternalID)
	}
}

func TestFindArtistByNameOldestWins(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	first, _, err := st.GetOrCreateArtist(ctx, "Santana", "s1")
	if err != nil {
		t.Fatalf("GetOrCreateArtist: %v", err)
	}
	// Same name under a different catalog id is a distinct row.
	if _, _, err := st.GetOrCreateArtist(ctx, "Santana", "s2"); err != nil {
		t.Fatalf("second GetOrCreateArtist: %v", err)
	}

	got, err := st.FindArtistByName(ctx, "santana")
	if err != nil {
		t.Fatalf("FindArtistByName: %v", err)
	}
	if got == nil || got.ID != first.ID {
		t.Errorf("FindArtistByName = %+v, want the oldest row %q", got, first.ID)
	}
}

func TestAddArtistGenresIsAdditive(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	a, _, err := st.GetOrCreateArtist(ctx, "Radiohead", "rh1")
	if err != nil {
		t.Fatalf("GetOrCreateArtist: %v", err)
	}
	rock, _, err := st.GetOrCreateGenre(ctx, "rock")
	if err != nil {
		t.Fatalf("GetOrCreateGenre: %v", err)
	}
	if err := st.AddArtistGenres(ctx, a.ID, []string{rock.ID}); err != nil {
		t.Fatalf("AddArtistGenres: %v", err)
	}
	// Repeat links and new links in one call.
	indie, _, err := st.GetOrCreateGenre(ctx, "indie")
	if err != nil {
		t.Fatalf("GetOrCreateGenre: %v", err)
	}
	if err := st.AddArtistGenres(ctx, a.ID, []string{rock.ID, indie.ID}); err != nil {
		t.Fatalf("second AddArtistGenres: %v", err)
	}

	genres, err := st.GenresByArtist(ctx, a.ID)
	if err != nil {
		t.Fatalf("GenresByArtist: %v", err)
	}
	if len(genres) != 2 {
		t.Errorf("genre count = %d, want 2", len(genres))
	}
}

func TestGetOrCreateAlbum(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	al, created, err := st.GetOrCreateAlbum(ctx, "OK Computer", "album", "1997-06-16", "okc")
	if err != nil {
		t.Fatalf("GetOrCreateAlbum: %v", err)
	}
	if !created {
		t.Error("first call should report created")
	}

	same, created, err := st.GetOrCreateAlbum(ctx, "OK Computer", "album", "1997-06-16", "okc")
	if err != nil {
		t.Fatalf("repeat GetOrCreateAlbum: %v", err)
	}
	if created || same.ID != al.ID {
		t.Errorf("repeat call created new row: created=%v", created)
	}
}

func TestGetOrCreateAlbumRejectsPartialDate(t *testing.T) {
	st := setupTestStore(t)

	_, _, err := st.GetOrCreateAlbum(context.Background(), "Bad", "album", "1997", "x")
	if !errors.Is(err, ErrValidation) {
		t.Errorf("error = %v, want ErrValidation for unnormalized date", err)
	}
}

func TestGetOrCreateAlbumAllowsUnknownDate(t *testing.T) {
	st := setupTestStore(t)

	al, _, err := st.GetOrCreateAlbum(context.Background(), "Undated", "single", "", "u1")
	if err != nil {
		t.Fatalf("GetOrCreateAlbum: %v", err)
	}
	if al.ReleaseDate != "" {
		t.Errorf("release date = %q, want empty", al.ReleaseDate)
	}
}

func TestFindAlbumByNameAndArtists(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	rh, _, err := st.GetOrCreateArtist(ctx, "Radiohead", "rh1")
	if err != nil {
		t.Fatalf("GetOrCreateArtist: %v", err)
	}
	weezer, _, err := st.GetOrCreateArtist(ctx, "Weezer", "wz1")
	if err != nil {
		t.Fatalf("GetOrCreateArtist: %v", err)
	}

	// Two same-name albums by different artists.
	blue1, _, err := st.GetOrCreateAlbum(ctx, "Blue Album", "album", "1994-05-10", "wz-blue")
	if err != nil {
		t.Fatalf("GetOrCreateAlbum: %v", err)
	}
	blue2, _, err := st.GetOrCreateAlbum(ctx, "Blue Album", "album", "2003-01-01", "rh-blue")
	if err != nil {
		t.Fatalf("GetOrCreateAlbum: %v", err)
	}
	if err := st.AddAlbumArtists(ctx, blue1.ID, []string{weezer.ID}); err != nil {
		t.Fatalf("AddAlbumArtists: %v", err)
	}
	if err := st.AddAlbumArtists(ctx, blue2.ID, []string{rh.ID}); err != nil {
		t.Fatalf("AddAlbumArtists: %v", err)
	}

	got, err := st.FindAlbumByNameAndArtists(ctx, "blue album", []string{rh.ID})
	if err != nil {
		t.Fatalf("FindAlbumByNameAndArtists: %v", err)
	}
	if got == nil || got.ID != blue2.ID {
		t.Errorf("got %+v, want the Radiohead-linked album %q", got, blue2.ID)
	}

	// No artist filter degrades to the plain name lookup.
	got, err = st.FindAlbumByNameAndArtists(ctx, "Blue Album", nil)
	if err != nil {
		t.Fatalf("FindAlbumByNameAndArtists(nil): %v", err)
	}
	if got == nil || got.ID != blue1.ID {
		t.Errorf("got %+v, want the oldest row %q", got, blue1.ID)
	}
}

func TestGetOrCreateSong(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	al, _, err := st.GetOrCreateAlbum(ctx, "OK Computer", "album", "1997-06-16", "okc")
	if err != nil {
		t.Fatalf("GetOrCreateAlbum: %v", err)
	}

	sg, created, err := st.GetOrCreateSong(ctx, "Airbag", al.ID, "1997-06-16", 70)
	if err != nil {
		t.Fatalf("GetOrCreateSong: %v", err)
	}
	if !created {
		t.Error("first call should report created")
	}

	same, created, err := st.GetOrCreateSong(ctx, "Airbag", al.ID, "1997-06-16", 70)
	if err != nil {
		t.Fatalf("repeat GetOrCreateSong: %v", err)
	}
	if created || same.ID != sg.ID {
		t.Errorf("repeat call created new row: created=%v", created)
	}
}

func TestGetOrCreateSongRejectsBadPopularity(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	al, _, err := st.GetOrCreateAlbum(ctx, "X", "album", "2020-01-01", "x")
	if err != nil {
		t.Fatalf("GetOrCreateAlbum: %v", err)
	}

	_, _, err = st.GetOrCreateSong(ctx, "Bad", al.ID, "2020-01-01", 150)
	if !errors.Is(err, ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
}

func TestDeleteAlbumCascades(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	al, _, err := st.GetOrCreateAlbum(ctx, "Temp", "album", "2020-01-01", "tmp")
	if err != nil {
		t.Fatalf("GetOrCreateAlbum: %v", err)
	}
	if _, _, err := st.GetOrCreateSong(ctx, "Temp Track", al.ID, "2020-01-01", 10); err != nil {
		t.Fatalf("GetOrCreateSong: %v", err)
	}

	if err := st.DeleteAlbum(ctx, al.ID); err != nil {
		t.Fatalf("DeleteAlbum: %v", err)
	}

	songs, err := st.ListSongs(ctx)
	if err != nil {
		t.Fatalf("ListSongs: %v", err)
	}
	if len(songs) != 0 {
		t.Errorf("song count after cascade delete = %d, want 0", len(songs))
	}
}

func TestSongsByArtist(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	a, _, err := st.GetOrCreateArtist(ctx, "Radiohead", "rh1")
	if err != nil {
		t.Fatalf("GetOrCreateArtist: %v", err)
	}
	al, _, err := st.GetOrCreateAlbum(ctx, "OK Computer", "album", "1997-06-16", "okc")
	if err != nil {
		t.Fatalf("GetOrCreateAlbum: %v", err)
	}
	sg, _, err := st.GetOrCreateSong(ctx, "Airbag", al.ID, "1997-06-16", 70)
	if err != nil {
		t.Fatalf("GetOrCreateSong: %v", err)
	}
	if err := st.AddSongArtists(ctx, sg.ID, []string{a.ID}); err != nil {
		t.Fatalf("AddSongArtists: %v", err)
	}

	songs, err := st.SongsByArtist(ctx, a.ID)
	if err != nil {
		t.Fatalf("SongsByArtist: %v", err)
	}
	if len(songs) != 1 || songs[0].ID != sg.ID {
		t.Errorf("songs = %+v, want the linked song", songs)
	}
}
