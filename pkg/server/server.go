package server

import (
	"net/http"

	"github.com/PhantomInTheWire/image-toolbox/pkg/config"
	"github.com/allape/gogger"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var l = gogger.New("server")

// Server exposes splitting, previewing and conversion over HTTP, and the
// interactive editor over a websocket.
type Server struct {
	conf     config.Config
	engine   *gin.Engine
	upgrader websocket.Upgrader
}

func New(conf config.Config) *Server {
	s := &Server{conf: conf}

	if conf.Server.Cors {
		s.upgrader.CheckOrigin = func(r *http.Request) bool {
			return true
		}
	}

	r := gin.New()
	r.Use(gin.Recovery())
	if conf.Server.Cors {
		r.Use(cors.Default())
	}
	r.MaxMultipartMemory = s.maxUpload()

	api := r.Group("/api")
	api.Use(s.limitBody)
	api.GET("/formats", s.handleFormats)
	api.POST("/split", s.handleSplit)
	api.POST("/preview", s.handlePreview)
	api.POST("/convert", s.handleConvert)

	r.GET(conf.Server.WSPath, s.handleEditor)

	s.engine = r
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) maxUpload() int64 {
	return int64(s.conf.Server.MaxUploadMB) << 20
}

func (s *Server) limitBody(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUpload())
	c.Next()
}

func (s *Server) handleEditor(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		l.Error().Println("upgrade:", err)
		return
	}
	defer func() {
		_ = conn.Close()
	}()

	if err := newSession(conn, s.conf).run(); err != nil {
		l.Verbose().Println("editor session:", err)
	}
}

func fail(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func attachment(c *gin.Context, name, contentType string, data []byte) {
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, contentType, data)
}
