package kanbanstub

import (
	"crypto/rand"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-logr/logr"
	"golang.org/x/crypto/bcrypt"

	"github.com/gotrs-io/kanban-e2e/internal/kanban"
)

// CookieName is the session cookie set on a successful login.
const CookieName = "kanban_session"

// LoginError is the message shown for rejected credentials.
const LoginError = "Invalid username or password"

// laneOrder is the DOM order lanes are rendered in. CSS puts them back in
// board order, so anything relying on DOM order sees a shuffled board.
var laneOrder = []kanban.Column{kanban.ColumnDone, kanban.ColumnReview, kanban.ColumnToDo, kanban.ColumnInProgress}

var tagClasses = map[kanban.Tag]string{
	kanban.TagFeature:      "bg-feature",
	kanban.TagBug:          "bg-bug",
	kanban.TagDesign:       "bg-design",
	kanban.TagHighPriority: "bg-priority",
	kanban.TagMarketing:    "bg-marketing",
}

// Options configure a Server.
type Options struct {
	Username string
	Password string
	Board    Board
	// Secret signs session cookies. A random one is generated when empty.
	Secret     []byte
	SessionTTL time.Duration
	Logger     logr.Logger
}

// Server is the stub board application.
type Server struct {
	opts Options
	// passwordHash is the only form of the password kept after New.
	passwordHash []byte
	tokens       *tokenManager
	renderer     *templateRenderer
	engine       *gin.Engine
}

// New builds the stub's routes.
func New(opts Options) (*Server, error) {
	if opts.Username == "" || opts.Password == "" {
		return nil, fmt.Errorf("stub credentials are required")
	}
	if len(opts.Board.Projects) == 0 {
		opts.Board = DefaultBoard()
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = time.Hour
	}
	if len(opts.Secret) == 0 {
		opts.Secret = make([]byte, 32)
		if _, err := rand.Read(opts.Secret); err != nil {
			return nil, fmt.Errorf("generating secret: %w", err)
		}
	}
	renderer, err := newTemplateRenderer()
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(opts.Password), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("hashing stub password: %w", err)
	}
	opts.Password = ""

	s := &Server{
		opts:         opts,
		passwordHash: hash,
		tokens:       newTokenManager(opts.Secret, opts.SessionTTL),
		renderer:     renderer,
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(opts.Logger))
	r.GET("/", s.handleRoot)
	r.GET("/login", func(c *gin.Context) { c.Redirect(http.StatusSeeOther, "/") })
	r.POST("/login", s.handleLogin)
	r.GET("/logout", s.handleLogout)
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	s.engine = r
	return s, nil
}

// Handler returns the stub's HTTP handler.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) authenticated(c *gin.Context) bool {
	cookie, err := c.Cookie(CookieName)
	if err != nil {
		return false
	}
	username, err := s.tokens.validate(cookie)
	return err == nil && username == s.opts.Username
}

func (s *Server) handleRoot(c *gin.Context) {
	if !s.authenticated(c) {
		s.renderer.HTML(c, http.StatusOK, "login.html", gin.H{})
		return
	}

	current := s.opts.Board.Projects[0]
	if name := c.Query("project"); name != "" {
		p, ok := s.opts.Board.Project(kanban.Project(name))
		if !ok {
			c.String(http.StatusNotFound, "unknown project %q", name)
			return
		}
		current = p
	}
	s.renderer.HTML(c, http.StatusOK, "board.html", gin.H{
		"projects": s.opts.Board.Projects,
		"project":  current,
		"lanes":    lanesFor(current),
	})
}

func (s *Server) handleLogin(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")
	if username != s.opts.Username || bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)) != nil {
		s.opts.Logger.V(1).Info("rejected login", "username", username)
		s.renderer.HTML(c, http.StatusUnauthorized, "login.html", gin.H{
			"error":    LoginError,
			"username": username,
		})
		return
	}
	token, err := s.tokens.generate(username)
	if err != nil {
		c.String(http.StatusInternalServerError, "issuing session: %v", err)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, token, int(math.Ceil(s.opts.SessionTTL.Seconds())), "/", "", false, true)
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) handleLogout(c *gin.Context) {
	c.SetCookie(CookieName, "", -1, "/", "", false, true)
	c.Redirect(http.StatusSeeOther, "/")
}

type tagView struct {
	Name  string
	Class string
}

type taskView struct {
	Title       string
	Description string
	Tags        []tagView
	Due         string
}

type laneView struct {
	Name  string
	Count int
	// Order is the lane's CSS order, its position on the board.
	Order int
	Tasks []taskView
}

func lanesFor(p Project) []laneView {
	position := make(map[kanban.Column]int)
	for i, c := range kanban.Columns() {
		position[c] = i
	}
	lanes := make([]laneView, 0, len(laneOrder))
	for _, col := range laneOrder {
		lane := laneView{Name: string(col), Order: position[col]}
		for _, t := range p.TasksIn(col) {
			tv := taskView{Title: t.Title, Description: t.Description, Due: t.Due}
			for _, tag := range t.Tags {
				tv.Tags = append(tv.Tags, tagView{Name: string(tag), Class: tagClasses[tag]})
			}
			lane.Tasks = append(lane.Tasks, tv)
		}
		lane.Count = len(lane.Tasks)
		lanes = append(lanes, lane)
	}
	return lanes
}

func requestLogger(logger logr.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.V(2).Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}
