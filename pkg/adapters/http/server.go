package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/aretw0/skillgraph"
	"github.com/aretw0/skillgraph/internal/logging"
	"github.com/aretw0/skillgraph/internal/presentation/graph"
	"github.com/aretw0/skillgraph/pkg/domain"
	sgraph "github.com/aretw0/skillgraph/pkg/graph"
)

// Server exposes a workspace as a JSON editing and run API.
type Server struct {
	ws      *skillgraph.Workspace
	logger  *slog.Logger
	metrics http.Handler
	Streams *StreamManager

	unsubscribe func()
	done        chan struct{}
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetricsHandler mounts h on GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// NewServer creates a server and starts forwarding graph changes to SSE
// subscribers. Call Close to stop forwarding.
func NewServer(ws *skillgraph.Workspace, opts ...Option) *Server {
	s := &Server{
		ws:     ws,
		logger: logging.NewNop(),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams = NewStreamManager(s.logger)

	changes, cancel := ws.Subscribe()
	s.unsubscribe = cancel
	go s.forward(changes)
	return s
}

// NewHandler creates a server and returns its routes.
func NewHandler(ws *skillgraph.Workspace, opts ...Option) http.Handler {
	return NewServer(ws, opts...).Handler()
}

// Close stops forwarding graph changes.
func (s *Server) Close() {
	s.unsubscribe()
	<-s.done
}

func (s *Server) forward(changes <-chan domain.GraphChange) {
	defer close(s.done)
	for c := range changes {
		if b, err := json.Marshal(c); err == nil {
			s.Streams.Broadcast(TopicGraph, string(b))
		}
	}
}

// Handler returns the chi router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/types", s.GetTypes)
	r.Get("/events", s.SubscribeEvents)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Get("/graph", s.GetGraph)
	r.Get("/mermaid", s.GetMermaid)
	r.Post("/save", s.Save)

	r.Route("/nodes", func(r chi.Router) {
		r.Post("/", s.CreateNode)
		r.Delete("/{guid}", s.DeleteNode)
		r.Put("/{guid}/accessor", s.SetAccessor)
		r.Put("/{guid}/inputs/{field}", s.SetInput)
	})
	r.Route("/edges", func(r chi.Router) {
		r.Post("/", s.Connect)
		r.Delete("/{guid}", s.Disconnect)
	})
	r.Route("/parameters", func(r chi.Router) {
		r.Get("/", s.ListParameters)
		r.Post("/", s.CreateParameter)
		r.Put("/{guid}", s.UpdateParameter)
		r.Delete("/{guid}", s.DeleteParameter)
	})

	r.Get("/skills", s.ListSkills)
	r.Post("/skills", s.StartSkill)
	r.Post("/tick", s.Tick)
	r.Post("/run", s.Run)

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "skillgraph-http",
		"version": skillgraph.Version,
	})
}

// TypeInfo describes a registered node type.
type TypeInfo struct {
	Type       string   `json:"type"`
	Name       string   `json:"name"`
	Sequential bool     `json:"sequential"`
	Fields     []string `json:"fields,omitempty"`
}

// GetTypes handles GET /types.
func (s *Server) GetTypes(w http.ResponseWriter, r *http.Request) {
	reg := s.ws.Engine().Registry()
	var out []TypeInfo
	for _, typ := range reg.Types() {
		d, _ := reg.Lookup(typ)
		out = append(out, TypeInfo{Type: d.Type, Name: d.Name, Sequential: d.Sequential, Fields: d.Fields.Keys()})
	}
	s.writeJSON(w, http.StatusOK, out)
}

// GetGraph handles GET /graph.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	doc, err := s.ws.Document()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, doc)
}

// GetMermaid handles GET /mermaid. Nodes in flight are highlighted.
func (s *Server) GetMermaid(w http.ResponseWriter, r *http.Request) {
	var overlay graph.GraphOverlay
	for _, st := range s.ws.Skills() {
		overlay.Running = append(overlay.Running, st.Running...)
	}
	var out string
	_ = s.ws.Do(func(g *sgraph.Graph) error {
		out = graph.GenerateMermaid(g, &overlay)
		return nil
	})
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(out))
}

// Save handles POST /save.
func (s *Server) Save(w http.ResponseWriter, r *http.Request) {
	if err := s.ws.Save(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateNodeRequest is the body of POST /nodes.
type CreateNodeRequest struct {
	Type   string         `json:"type"`
	X      float64        `json:"x"`
	Y      float64        `json:"y"`
	Name   string         `json:"name,omitempty"`
	Fields map[string]any `json:"fields,omitempty"`
	Entry  bool           `json:"entry,omitempty"`
}

// CreateNode handles POST /nodes.
func (s *Server) CreateNode(w http.ResponseWriter, r *http.Request) {
	var body CreateNodeRequest
	if !s.decode(w, r, &body) {
		return
	}

	var rec domain.NodeRecord
	err := s.ws.Do(func(g *sgraph.Graph) error {
		n, err := s.ws.Engine().Registry().Restore(domain.NodeRecord{
			GUID:       uuid.NewString(),
			Type:       body.Type,
			Position:   domain.Position{X: body.X, Y: body.Y},
			CustomName: body.Name,
			Fields:     body.Fields,
		})
		if err != nil {
			return err
		}
		if err := g.AddNode(n); err != nil {
			return err
		}
		if _, ok := g.Node(n.GUID); !ok {
			return fmt.Errorf("node %s: %w", n.GUID, domain.ErrParameterNotFound)
		}
		if body.Entry {
			if err := g.SetEntryNode(n.GUID); err != nil {
				return err
			}
		}
		rec, err = n.Record()
		return err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, rec)
}

// DeleteNode handles DELETE /nodes/{guid}.
func (s *Server) DeleteNode(w http.ResponseWriter, r *http.Request) {
	guid := chi.URLParam(r, "guid")
	err := s.ws.Do(func(g *sgraph.Graph) error {
		n, ok := g.Node(guid)
		if !ok {
			return fmt.Errorf("node %s: %w", guid, domain.ErrNodeNotFound)
		}
		g.DeleteNode(n)
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AccessorRequest is the body of PUT /nodes/{guid}/accessor.
type AccessorRequest struct {
	Accessor string `json:"accessor"`
}

// SetAccessor handles PUT /nodes/{guid}/accessor.
func (s *Server) SetAccessor(w http.ResponseWriter, r *http.Request) {
	var body AccessorRequest
	if !s.decode(w, r, &body) {
		return
	}
	guid := chi.URLParam(r, "guid")

	var rec domain.NodeRecord
	err := s.ws.Do(func(g *sgraph.Graph) error {
		n, ok := g.Node(guid)
		if !ok {
			return fmt.Errorf("node %s: %w", guid, domain.ErrNodeNotFound)
		}
		if err := g.SetParameterAccessor(n, sgraph.Accessor(body.Accessor)); err != nil {
			return &badRequest{err}
		}
		var err error
		rec, err = n.Record()
		return err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

// ValueRequest carries a single value.
type ValueRequest struct {
	Value any `json:"value"`
}

// SetInput handles PUT /nodes/{guid}/inputs/{field}: the inline value of
// an unconnected data input.
func (s *Server) SetInput(w http.ResponseWriter, r *http.Request) {
	var body ValueRequest
	if !s.decode(w, r, &body) {
		return
	}
	guid, field := chi.URLParam(r, "guid"), chi.URLParam(r, "field")
	err := s.ws.Do(func(g *sgraph.Graph) error {
		n, ok := g.Node(guid)
		if !ok {
			return fmt.Errorf("node %s: %w", guid, domain.ErrNodeNotFound)
		}
		return n.SetInput(field, body.Value)
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ConnectRequest is the body of POST /edges.
type ConnectRequest struct {
	InputNode      string `json:"input_node"`
	InputField     string `json:"input_field"`
	OutputNode     string `json:"output_node"`
	OutputField    string `json:"output_field"`
	AutoDisconnect *bool  `json:"auto_disconnect,omitempty"`
}

// Connect handles POST /edges.
func (s *Server) Connect(w http.ResponseWriter, r *http.Request) {
	var body ConnectRequest
	if !s.decode(w, r, &body) {
		return
	}
	var opts []sgraph.ConnectOption
	if body.AutoDisconnect != nil {
		opts = append(opts, sgraph.WithAutoDisconnect(*body.AutoDisconnect))
	}

	var rec domain.EdgeRecord
	err := s.ws.Do(func(g *sgraph.Graph) error {
		e, err := g.ConnectFields(body.InputNode, body.InputField, body.OutputNode, body.OutputField, opts...)
		if err != nil {
			return err
		}
		rec = e.Record()
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, rec)
}

// Disconnect handles DELETE /edges/{guid}.
func (s *Server) Disconnect(w http.ResponseWriter, r *http.Request) {
	guid := chi.URLParam(r, "guid")
	if err := s.ws.Do(func(g *sgraph.Graph) error { return g.Disconnect(guid) }); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListParameters handles GET /parameters.
func (s *Server) ListParameters(w http.ResponseWriter, r *http.Request) {
	var out []domain.ParameterRecord
	_ = s.ws.Do(func(g *sgraph.Graph) error {
		for _, p := range g.Parameters() {
			out = append(out, p.Record())
		}
		return nil
	})
	if out == nil {
		out = []domain.ParameterRecord{}
	}
	s.writeJSON(w, http.StatusOK, out)
}

// CreateParameterRequest is the body of POST /parameters.
type CreateParameterRequest struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Value any    `json:"value,omitempty"`
}

// CreateParameter handles POST /parameters.
func (s *Server) CreateParameter(w http.ResponseWriter, r *http.Request) {
	var body CreateParameterRequest
	if !s.decode(w, r, &body) {
		return
	}
	var rec domain.ParameterRecord
	err := s.ws.Do(func(g *sgraph.Graph) error {
		guid, err := g.AddParameter(body.Name, body.Type, body.Value)
		if err != nil {
			return err
		}
		p, _ := g.Parameter(guid)
		rec = p.Record()
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, rec)
}

// UpdateParameter handles PUT /parameters/{guid}.
func (s *Server) UpdateParameter(w http.ResponseWriter, r *http.Request) {
	var body ValueRequest
	if !s.decode(w, r, &body) {
		return
	}
	guid := chi.URLParam(r, "guid")

	var rec domain.ParameterRecord
	err := s.ws.Do(func(g *sgraph.Graph) error {
		if err := g.UpdateParameter(guid, body.Value); err != nil {
			return err
		}
		p, _ := g.Parameter(guid)
		rec = p.Record()
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

// DeleteParameter handles DELETE /parameters/{guid}. Parameter nodes bound
// to it are deleted too.
func (s *Server) DeleteParameter(w http.ResponseWriter, r *http.Request) {
	guid := chi.URLParam(r, "guid")
	err := s.ws.Do(func(g *sgraph.Graph) error {
		if !g.RemoveParameter(guid) {
			return fmt.Errorf("parameter %s: %w", guid, domain.ErrParameterNotFound)
		}
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListSkills handles GET /skills.
func (s *Server) ListSkills(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.ws.Skills())
}

// StartSkill handles POST /skills.
func (s *Server) StartSkill(w http.ResponseWriter, r *http.Request) {
	st, err := s.ws.StartSkill(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.broadcastSkills(s.ws.Skills())
	s.writeJSON(w, http.StatusCreated, st)
}

// Tick handles POST /tick.
func (s *Server) Tick(w http.ResponseWriter, r *http.Request) {
	statuses := s.ws.Tick()
	s.broadcastSkills(statuses)
	s.writeJSON(w, http.StatusOK, statuses)
}

// RunRequest is the body of POST /run.
type RunRequest struct {
	MaxTicks int `json:"max_ticks"`
}

// Run handles POST /run: start a skill and tick it to completion.
func (s *Server) Run(w http.ResponseWriter, r *http.Request) {
	var body RunRequest
	if r.ContentLength != 0 && !s.decode(w, r, &body) {
		return
	}
	st, err := s.ws.RunSkill(r.Context(), skillgraph.RunOptions{MaxTicks: body.MaxTicks})
	s.broadcastSkills(s.ws.Skills())
	if err != nil && !errors.Is(err, skillgraph.ErrTickLimit) {
		s.writeError(w, err)
		return
	}
	code := http.StatusOK
	if err != nil {
		code = http.StatusAccepted
	}
	s.writeJSON(w, code, st)
}

func (s *Server) broadcastSkills(statuses []skillgraph.SkillStatus) {
	if s.Streams.Subscribers(TopicSkills) == 0 {
		return
	}
	if b, err := json.Marshal(statuses); err == nil {
		s.Streams.Broadcast(TopicSkills, string(b))
	}
}

// SubscribeEvents handles GET /events (SSE). The topic query parameter
// picks "graph" (default) or "skills".
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}
	topic := strings.TrimSpace(r.URL.Query().Get("topic"))
	if topic == "" {
		topic = TopicGraph
	}
	if topic != TopicGraph && topic != TopicSkills {
		http.Error(w, fmt.Sprintf("unknown topic %q", topic), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(topic)
	defer cancel()
	s.logger.Info("SSE: client subscribed", "topic", topic)

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE: client disconnected", "topic", topic)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", topic, msg)
			flusher.Flush()
		}
	}
}
