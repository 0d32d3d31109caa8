package id

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mu   sync.Mutex
	mono io.Reader
)

func init() {
	var seed int64
	_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	// Monotonic keeps ids minted in the same millisecond ordered, so trade
	// ids sort the same way they were appended.
	mono = ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)
}

// New returns a ULID string for a position, trade or journal entry.
func New() string {
	return NewAt(time.Now())
}

// NewAt returns a ULID stamped with t.
func NewAt(t time.Time) string {
	mu.Lock()
	defer mu.Unlock()

	v, err := ulid.New(ulid.Timestamp(t.UTC()), mono)
	if err != nil {
		panic(err)
	}
	return v.String()
}

// Time extracts the creation time embedded in a ULID string.
func Time(s string) (time.Time, error) {
	v, err := ulid.ParseStrict(s)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(v.Time()), nil
}

// Valid reports whether s is a well-formed ULID.
func Valid(s string) bool {
	_, err := ulid.ParseStrict(s)
	return err == nil
}
