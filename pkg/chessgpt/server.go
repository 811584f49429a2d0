package chessgpt

import (
	"errors"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/MF-FOOM/chessgpt/pkg/llm"
)

// Server is the HTTP surface: the board page, the websocket RPC endpoint
// and the export and metrics routes.
type Server struct {
	http.ServeMux
	mgr    *SessionMgr
	logger *zap.Logger
	index  *template.Template
}

// indexData feeds the room page template.
type indexData struct {
	Room   string
	Models []string
}

func NewServer(assets fs.FS, mgr *SessionMgr, logger *zap.Logger) *Server {
	indexRaw, err := fs.ReadFile(assets, "index.html")
	if err != nil {
		panic(err)
	}
	srv := &Server{
		mgr:    mgr,
		logger: logger,
		index:  template.Must(template.New("index").Parse(string(indexRaw))),
	}

	srv.Handle("/css/", http.FileServer(http.FS(assets)))
	srv.Handle("/js/", http.FileServer(http.FS(assets)))
	srv.Handle("/metrics", promhttp.Handler())

	srv.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if len(r.URL.Path) <= 1 {
			http.Redirect(w, r, "/room/"+uuid.NewString(), http.StatusTemporaryRedirect)
		}
	})

	srv.HandleFunc("/room/", func(w http.ResponseWriter, r *http.Request) {
		roomID := r.URL.Path[6:]
		if len(roomID) == 0 {
			http.Redirect(w, r, "/room/"+uuid.NewString(), http.StatusTemporaryRedirect)
			return
		}
		srv.renderIndex(w, roomID)
	})

	srv.HandleFunc("/custom", func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		game, err := gameFromForm(r.Form)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		roomID, err := mgr.CreateSession(game)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Redirect(w, r, "/room/"+roomID, http.StatusTemporaryRedirect)
	})

	srv.HandleFunc("/ws/", func(w http.ResponseWriter, r *http.Request) {
		roomID := r.URL.Path[4:]
		mgr.ServeRPC(w, r, roomID)
	})

	srv.HandleFunc("/gif/", func(w http.ResponseWriter, r *http.Request) {
		roomID := r.URL.Path[5:]
		w.Header().Set("Content-Disposition", "attachment; filename="+roomID+".gif")
		w.Header().Set("Content-Type", "image/gif")
		if err := mgr.MoveHistoryToGIF(w, roomID); err != nil {
			http.Error(w, "room not found", http.StatusNotFound)
		}
	})

	srv.HandleFunc("/pgn/", func(w http.ResponseWriter, r *http.Request) {
		roomID := r.URL.Path[5:]
		w.Header().Set("Content-Disposition", "attachment; filename="+roomID+".pgn")
		w.Header().Set("Content-Type", "application/x-chess-pgn")
		if err := mgr.WritePGN(w, roomID); err != nil {
			http.Error(w, "room not found", http.StatusNotFound)
		}
	})

	return srv
}

func (srv *Server) renderIndex(w http.ResponseWriter, roomID string) {
	data := indexData{Room: roomID, Models: llm.ModelIDs()}
	if err := srv.index.Execute(w, data); err != nil {
		srv.logger.Error("render index", zap.String("room", roomID), zap.Error(err))
	}
}

func gameFromForm(form url.Values) (string, error) {
	for _, gameType := range []string{"fen", "pgn"} {
		if form.Has(gameType) {
			return gameType + ":" + form.Get(gameType), nil
		}
	}
	return "", errors.New("form must contain a fen or pgn field")
}
