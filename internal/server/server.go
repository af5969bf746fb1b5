package server

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/glog"
	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"github.com/idilsaglam/todosync/internal/remote"
)

// Server is a development backend for the todo client. Records are
// scoped per x-user-id header and held in per-user bbolt buckets keyed
// by their hex id.
type Server struct {
	db     *bbolt.DB
	router *gin.Engine
}

// record is the stored shape; the id is the bucket key.
type record struct {
	Title string `json:"title"`
	Done  bool   `json:"done"`
}

type createPayload struct {
	Title string `json:"title" binding:"required"`
}

type updatePayload struct {
	Done *bool `json:"done" binding:"required"`
}

func New(dbPath string) (*Server, error) {
	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), cors)

	s := &Server{db: db, router: router}
	router.GET("/todos", s.handleList)
	router.POST("/todos", s.handleCreate)
	router.PUT("/todos/:id", s.handleUpdate)
	router.DELETE("/todos/:id", s.handleDelete)
	return s, nil
}

// Handler exposes the router for httptest.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves until the listener fails.
func (s *Server) Run(addr string) error {
	glog.Infof("dev server listening on %s", addr)
	return s.router.Run(addr)
}

func (s *Server) Close() error { return s.db.Close() }

// cors mirrors the original development setup: everything allowed.
func cors(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Methods", "*")
	c.Header("Access-Control-Allow-Headers", "*")
	if c.Request.Method == http.MethodOptions {
		c.AbortWithStatus(http.StatusNoContent)
		return
	}
	c.Next()
}

func userBucket(c *gin.Context) []byte {
	id := c.GetHeader(remote.HeaderUserID)
	if id == "" {
		id = "anonymous"
	}
	return []byte("user:" + id)
}

// wireTodo renders a record the way the original backend did: the id as
// a BSON-style {"$oid": hex} document.
func wireTodo(id string, r record) gin.H {
	return gin.H{"_id": gin.H{"$oid": id}, "title": r.Title, "done": r.Done}
}

var (
	oidMachine = func() (m [5]byte) {
		u := uuid.New()
		copy(m[:], u[:5])
		return m
	}()
	oidCounter atomic.Uint32
)

// newObjectID builds a Mongo-layout object id: 4-byte unix timestamp,
// 5 random bytes fixed per process, 3-byte counter. Ids minted by one
// process sort by creation, so bucket iteration preserves insertion
// order.
func newObjectID() string {
	var b [12]byte
	binary.BigEndian.PutUint32(b[:4], uint32(time.Now().Unix()))
	copy(b[4:9], oidMachine[:])
	n := oidCounter.Add(1)
	b[9] = byte(n >> 16)
	b[10] = byte(n >> 8)
	b[11] = byte(n)
	return hex.EncodeToString(b[:])
}

func validObjectID(id string) bool {
	b, err := hex.DecodeString(id)
	return err == nil && len(b) == 12
}

func (s *Server) handleList(c *gin.Context) {
	bucket := userBucket(c)
	out := []gin.H{}
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			var r record
			if err := json.Unmarshal(v, &r); err != nil {
				return err
			}
			out = append(out, wireTodo(string(k), r))
			return nil
		})
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleCreate(c *gin.Context) {
	var payload createPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}
	id := newObjectID()
	r := record{Title: payload.Title, Done: false}
	v, err := json.Marshal(r)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	bucket := userBucket(c)
	err = s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucket)
		if err != nil {
			return err
		}
		return b.Put([]byte(id), v)
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, wireTodo(id, r))
}

func (s *Server) handleUpdate(c *gin.Context) {
	id := c.Param("id")
	if !validObjectID(id) {
		c.Status(http.StatusBadRequest)
		return
	}
	var payload updatePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	bucket := userBucket(c)
	status := http.StatusOK
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			status = http.StatusNotFound
			return nil
		}
		v := b.Get([]byte(id))
		if v == nil {
			status = http.StatusNotFound
			return nil
		}
		var r record
		if err := json.Unmarshal(v, &r); err != nil {
			return err
		}
		r.Done = *payload.Done
		nv, err := json.Marshal(r)
		if err != nil {
			return err
		}
		return b.Put([]byte(id), nv)
	})
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Status(status)
}

func (s *Server) handleDelete(c *gin.Context) {
	id := c.Param("id")
	if !validObjectID(id) {
		c.Status(http.StatusBadRequest)
		return
	}
	bucket := userBucket(c)
	status := http.StatusOK
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil || b.Get([]byte(id)) == nil {
			status = http.StatusNotFound
			return nil
		}
		return b.Delete([]byte(id))
	})
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Status(status)
}
