package webui

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/klauspost/compress/gzhttp"
	"go.uber.org/zap"

	"github.com/functionland/blox-wizard/internal/api"
	"github.com/functionland/blox-wizard/internal/onboarding"
	"github.com/functionland/blox-wizard/internal/onboarding/entity"
	"github.com/functionland/blox-wizard/internal/session"
)

//go:embed views/*.html
var views embed.FS

//go:embed public
var public embed.FS

var titles = map[onboarding.Step]string{
	onboarding.StepWelcome:       "Welcome",
	onboarding.StepConnectWallet: "Connect to wallet",
	onboarding.StepSetAuthorizer: "Set authorizer",
	onboarding.StepPools:         "Pools",
	onboarding.StepHome:          "Home",
}

var flags = map[onboarding.Step]string{
	onboarding.StepWelcome:       entity.KeySetupStarted,
	onboarding.StepConnectWallet: entity.KeyWalletSet,
	onboarding.StepSetAuthorizer: entity.KeyAuthorizerSet,
	onboarding.StepPools:         entity.KeyPoolJoined,
}

// Progress reads the wizard state.
type Progress interface {
	Load(ctx context.Context) (*entity.State, error)
}

// Reconciler fast-forwards an already provisioned node.
type Reconciler interface {
	Reconcile(ctx context.Context) (*entity.State, error)
}

type navItem struct {
	Title   string
	Current bool
	Done    bool
}

type page struct {
	Step      onboarding.Step
	Title     string
	Flag      string
	Done      bool
	NextPath  string
	AccountID string
	Peers     entity.PeerIdentity
	Nav       []navItem
}

type Handler struct {
	progress   Progress
	reconciler Reconciler
	sessions   *session.Manager
	tmpl       *template.Template
	logger     *zap.SugaredLogger
}

func NewHandler(p Progress, rc Reconciler, sessions *session.Manager, logger *zap.SugaredLogger) (*Handler, error) {
	tmpl, err := template.ParseFS(views, "views/*.html")
	if err != nil {
		return nil, err
	}
	return &Handler{progress: p, reconciler: rc, sessions: sessions, tmpl: tmpl, logger: logger}, nil
}

// Index handles GET /webui by redirecting to the first unfinished step.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	st, err := h.reconciler.Reconcile(r.Context())
	if err != nil {
		h.logger.Warnw("reconcile onboarding state", "err", err)
		if st, err = h.progress.Load(r.Context()); err != nil {
			api.WriteServerError(w, err)
			return
		}
	}
	http.Redirect(w, r, onboarding.NextStep(st.Progress).Path(), http.StatusFound)
}

// Page handles GET /webui/{step}.
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	step := onboarding.Step(r.PathValue("step"))
	if _, ok := titles[step]; !ok {
		http.NotFound(w, r)
		return
	}
	st, err := h.progress.Load(r.Context())
	if err != nil {
		h.logger.Errorw("load onboarding state", "err", err)
		api.WriteServerError(w, err)
		return
	}

	p := page{
		Step:      step,
		Title:     titles[step],
		Flag:      flags[step],
		Done:      onboarding.Done(step, st.Progress),
		AccountID: st.AccountID,
		Peers:     st.Peers,
	}
	for i, s := range onboarding.Steps {
		p.Nav = append(p.Nav, navItem{Title: titles[s], Current: s == step, Done: onboarding.Done(s, st.Progress) && s != onboarding.StepHome})
		if s == step && i+1 < len(onboarding.Steps) {
			p.NextPath = onboarding.Steps[i+1].Path()
		}
	}

	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, "page", p); err != nil {
		h.logger.Errorw("render page", "step", step, "err", err)
		api.WriteServerError(w, err)
		return
	}
	if _, err := h.sessions.SetCookie(w); err != nil {
		h.logger.Errorw("issue session", "err", err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

// Static serves the embedded assets under /webui/public/.
func Static() http.Handler {
	sub, err := fs.Sub(public, "public")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/webui/public/", http.FileServer(http.FS(sub)))
}

// Compress gzips responses for clients that accept it.
func Compress(next http.Handler) http.Handler {
	return gzhttp.GzipHandler(next)
}
