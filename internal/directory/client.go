// Package directory resolves student identities against the institutional
// LDAP store. The connection is an explicitly owned handle: service-bound at
// startup, health-checked, and re-established with backoff when the upstream
// drops it.
package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-ldap/ldap/v3"
	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned when a subject does not resolve to exactly one
	// directory entry. Ambiguous matches are folded in, since uid is expected
	// unique.
	ErrNotFound = errors.New("directory: user not found")
	// ErrUnavailable is returned when the directory cannot be reached or the
	// service bind fails.
	ErrUnavailable = errors.New("directory: upstream unavailable")
)

// Record is the canonical profile shape consumed by the rest of the system.
// Attributes missing upstream stay empty rather than erroring.
type Record struct {
	UID           string `json:"uid"`
	Name          string `json:"name"`
	LastName      string `json:"lastName"`
	Email         string `json:"email"`
	Mobile        string `json:"mobile"`
	Department    string `json:"department"`
	Room          string `json:"room"`
	Hostel        string `json:"hostel"`
	Stream        string `json:"stream"`
	PostalAddress string `json:"postalAddress"`
	Role          string `json:"role"`
}

var searchAttributes = []string{
	"cn", "sn", "uid", "mail", "mobile", "roomNumber", "departmentNumber", "ou", "postalAddress",
}

// Config holds connection settings for the directory client.
type Config struct {
	URL          string
	BindDN       string
	BindPassword string
	BaseDN       string
	StudentOU    string
	Timeout      time.Duration
}

// Client is a process-wide directory handle safe for concurrent use.
type Client struct {
	cfg Config
	log *zap.Logger

	mu   sync.Mutex
	conn *ldap.Conn
}

// New creates a client. The connection is established lazily on first use.
func New(cfg Config, log *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{cfg: cfg, log: log}
}

// Close tears down the service connection.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

// Healthy reports whether a service bind can be obtained.
func (c *Client) Healthy(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.serviceConnLocked(ctx)
	return err == nil
}

// Lookup resolves a subject id to its directory record. Exactly one entry
// must match; zero or several map to ErrNotFound.
func (c *Client) Lookup(ctx context.Context, subjectID string) (Record, error) {
	base := c.cfg.StudentOU + "," + c.cfg.BaseDN
	req := ldap.NewSearchRequest(
		base,
		ldap.ScopeWholeSubtree, ldap.NeverDerefAliases, 2, int(c.cfg.Timeout.Seconds()), false,
		fmt.Sprintf("(uid=%s)", ldap.EscapeFilter(subjectID)),
		searchAttributes,
		nil,
	)

	res, err := c.search(ctx, req)
	if err != nil {
		return Record{}, err
	}
	if len(res.Entries) != 1 {
		return Record{}, ErrNotFound
	}
	return transformEntry(res.Entries[0]), nil
}

// Authenticate verifies a student's credentials with a user-DN bind on a
// dedicated connection. A failed bind means bad credentials, not an error.
func (c *Client) Authenticate(ctx context.Context, username, password string) (bool, error) {
	if username == "" || password == "" {
		return false, nil
	}
	conn, err := c.dial(ctx)
	if err != nil {
		return false, err
	}
	defer conn.Close()

	if err := conn.Bind(c.userDN(username), password); err != nil {
		c.log.Info("user bind rejected", zap.String("uid", username))
		return false, nil
	}
	return true, nil
}

// userDN builds the bind DN for a student entry.
func (c *Client) userDN(username string) string {
	return fmt.Sprintf("uid=%s,%s,%s", ldap.EscapeDN(username), c.cfg.StudentOU, c.cfg.BaseDN)
}

// search runs a query on the shared service connection, rebinding once if
// the connection has gone stale.
func (c *Client) search(ctx context.Context, req *ldap.SearchRequest) (*ldap.SearchResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	conn, err := c.serviceConnLocked(ctx)
	if err != nil {
		return nil, err
	}
	res, err := conn.Search(req)
	if err == nil {
		return res, nil
	}
	if ldap.IsErrorWithCode(err, ldap.ErrorNetwork) {
		c.dropLocked()
		conn, rerr := c.serviceConnLocked(ctx)
		if rerr != nil {
			return nil, rerr
		}
		if res, err = conn.Search(req); err == nil {
			return res, nil
		}
	}
	if ldap.IsErrorWithCode(err, ldap.LDAPResultNoSuchObject) {
		return nil, ErrNotFound
	}
	return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
}

// serviceConnLocked returns the bound service connection, establishing it
// with capped backoff if needed. Callers hold c.mu.
func (c *Client) serviceConnLocked(ctx context.Context) (*ldap.Conn, error) {
	if c.conn != nil {
		return c.conn, nil
	}
	var lastErr error
	backoff := 200 * time.Millisecond
	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(backoff):
				backoff *= 2
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err())
			}
		}
		conn, err := c.dial(ctx)
		if err != nil {
			lastErr = err
			continue
		}
		if err := conn.Bind(c.cfg.BindDN, c.cfg.BindPassword); err != nil {
			conn.Close()
			lastErr = err
			c.log.Warn("service bind failed", zap.Error(err))
			continue
		}
		c.conn = conn
		return conn, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnavailable, lastErr)
}

func (c *Client) dropLocked() {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

func (c *Client) dial(ctx context.Context) (*ldap.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	conn, err := ldap.DialURL(c.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	conn.SetTimeout(c.cfg.Timeout)
	return conn, nil
}

// transformEntry maps LDAP attributes onto the canonical record. The hostel
// is derived from the room number, which the directory encodes as
// "<hostel>-<room>".
func transformEntry(entry *ldap.Entry) Record {
	room := entry.GetAttributeValue("roomNumber")
	hostel := ""
	if i := strings.Index(room, "-"); i > 0 {
		hostel = room[:i]
	} else {
		hostel = room
	}
	return Record{
		UID:           entry.GetAttributeValue("uid"),
		Name:          entry.GetAttributeValue("cn"),
		LastName:      entry.GetAttributeValue("sn"),
		Email:         entry.GetAttributeValue("mail"),
		Mobile:        entry.GetAttributeValue("mobile"),
		Department:    entry.GetAttributeValue("departmentNumber"),
		Room:          room,
		Hostel:        hostel,
		Stream:        entry.GetAttributeValue("ou"),
		PostalAddress: entry.GetAttributeValue("postalAddress"),
		Role:          "student",
	}
}
