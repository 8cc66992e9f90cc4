package discovery

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const lobbyPage = `<html><body>
<ul>
  <li><a href="/boards/3">Board three</a></li>
  <li><a href="https://example.test/boards/1/watch">Board one</a></li>
  <li><a href="/boards/3">Board three again</a></li>
  <li><a href="/bots/7">Not a board</a></li>
  <li><div data-board-id="9">Board nine</div></li>
  <li><div data-board-id="nine">Broken</div></li>
</ul>
</body></html>`

func lobbyServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = io.WriteString(w, lobbyPage)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestBoards_ParsesLinksAndAttributes(t *testing.T) {
	srv := lobbyServer(t)
	w := NewWorker(Config{}, nil, quiet())

	ids, err := w.Boards(context.Background(), srv.URL+"/")
	if err != nil {
		t.Fatalf("Boards: %v", err)
	}
	want := []int{1, 3, 9}
	if len(ids) != len(want) {
		t.Fatalf("ids=%v want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("ids=%v want %v", ids, want)
		}
	}

	if _, err := w.Boards(context.Background(), srv.URL+"/missing"); err == nil {
		t.Fatalf("expected error on 404")
	}
}

func TestDiscover_SkipsKnownBoards(t *testing.T) {
	srv := lobbyServer(t)
	w := NewWorker(Config{LobbyURLs: []string{srv.URL + "/", srv.URL + "/"}}, map[int]bool{3: true}, quiet())

	out := make(chan int, 10)
	n, err := w.Discover(context.Background(), out)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	close(out)

	var got []int
	for id := range out {
		got = append(got, id)
	}
	if n != 2 || len(got) != 2 || got[0] != 1 || got[1] != 9 {
		t.Fatalf("n=%d got=%v", n, got)
	}
}

func TestPoll_StopsOnCancel(t *testing.T) {
	srv := lobbyServer(t)
	w := NewWorker(Config{LobbyURLs: []string{srv.URL + "/"}}, nil, quiet())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out := make(chan int, 10)
	done := make(chan error, 1)
	go func() { done <- w.Poll(ctx, 10*time.Millisecond, out) }()

	got := []int{<-out, <-out, <-out}
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v want context.Canceled", err)
	}
	if got[0] != 1 || got[1] != 3 || got[2] != 9 {
		t.Fatalf("got=%v", got)
	}
	// Later rounds only repeat known ids.
	if len(out) != 0 {
		t.Fatalf("unexpected extra ids: %d", len(out))
	}
}
