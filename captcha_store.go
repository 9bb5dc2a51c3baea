package goCaptcha

import (
	"crypto/subtle"
	"errors"
	"sync"
	"time"

	"github.com/hearsum/goCaptcha/internal"
)

var (
	errCaptchaSessionNotFound = errors.New("captcha session not found")
	errCaptchaSessionExpired  = errors.New("captcha session expired")
	errCaptchaTokenMismatch   = errors.New("captcha session token mismatch")
)

type captchaSession struct {
	Answer   string
	Token    string
	ExpireAt int64
	Kind     ChallengeKind
}

// captchaSessionStore keeps pending challenge sessions in process memory.
// Records are purged lazily on access and swept in the background when a
// sweep interval is configured. A session disappears exactly once: either
// through Consume, through expiry, or through the sweeper.
type captchaSessionStore struct {
	mu       sync.Mutex
	sessions map[string]*captchaSession

	sweepInterval time.Duration
	done          chan struct{}
	wg            sync.WaitGroup
	closeOnce     sync.Once

	swept func(n int)
}

func newCaptchaSessionStore(cfg StoreConfig, swept func(n int)) *captchaSessionStore {
	s := &captchaSessionStore{
		sessions:      make(map[string]*captchaSession),
		sweepInterval: cfg.SweepInterval,
		done:          make(chan struct{}),
		swept:         swept,
	}

	if s.sweepInterval > 0 {
		s.wg.Add(1)
		go s.run()
	}

	return s
}

func (s *captchaSessionStore) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			n := s.sweep(time.Now().Unix())
			if n > 0 && s.swept != nil {
				s.swept(n)
			}
		case <-s.done:
			return
		}
	}
}

// Create registers a new pending session and returns its id, session token,
// and absolute expiry in unix seconds. The id and token are independent
// crypto-random values.
func (s *captchaSessionStore) Create(answer string, kind ChallengeKind, ttl time.Duration) (string, string, int64, error) {
	cid, err := internal.NewCaptchaID()
	if err != nil {
		return "", "", 0, err
	}
	token, err := internal.NewSessionToken()
	if err != nil {
		return "", "", 0, err
	}

	id := cid.String()
	expireAt := time.Now().Add(ttl).Unix()

	s.mu.Lock()
	s.sessions[id] = &captchaSession{
		Answer:   answer,
		Token:    token,
		ExpireAt: expireAt,
		Kind:     kind,
	}
	s.mu.Unlock()

	return id, token, expireAt, nil
}

// Get returns a copy of the live session record. Expired records are purged
// and reported as expired.
func (s *captchaSessionStore) Get(id string) (captchaSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.sessions[id]
	if !ok {
		return captchaSession{}, errCaptchaSessionNotFound
	}
	if time.Now().Unix() > record.ExpireAt {
		delete(s.sessions, id)
		return captchaSession{}, errCaptchaSessionExpired
	}

	return *record, nil
}

// Validate checks possession of the session token for a live session and
// returns a copy of the record. An empty presented token skips the possession
// check; the record stays untouched either way so a caller holding only the id
// can still answer when token enforcement is off.
func (s *captchaSessionStore) Validate(id, token string) (captchaSession, error) {
	record, err := s.Get(id)
	if err != nil {
		return captchaSession{}, err
	}
	if token == "" {
		return record, nil
	}
	if subtle.ConstantTimeCompare([]byte(record.Token), []byte(token)) != 1 {
		return captchaSession{}, errCaptchaTokenMismatch
	}
	return record, nil
}

// Consume removes the session and reports whether this caller won the removal.
// Exactly one concurrent caller observes true for a given id.
func (s *captchaSessionStore) Consume(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	return true
}

func (s *captchaSessionStore) sweep(now int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, record := range s.sessions {
		if now > record.ExpireAt {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

// Len reports the number of live records, expired-but-unswept included.
func (s *captchaSessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *captchaSessionStore) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.wg.Wait()
	})
}
