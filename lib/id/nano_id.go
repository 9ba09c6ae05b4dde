package id

import (
	crand "crypto/rand"
	"errors"
	"sync"

	"github.com/benz9527/xctl/lib/infra"
)

const (
	nanoIDMinLength = 2
	nanoIDMaxLength = 255
	// IDs worth of random bytes drawn per refill.
	nanoIDBatch = 64
)

var ErrNanoIDInvalidLength = errors.New("[nano-id] length must be in [2, 255]")

// 64 symbols, so a random byte masked by 0x3f picks one without bias.
const nanoIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

type nanoIDSource struct {
	lock   sync.Mutex
	length int
	pool   []byte
	offset int
}

func (src *nanoIDSource) refill() error {
	if _, err := crand.Read(src.pool); err != nil {
		return infra.WrapErrorStackWithMessage(err, "[nano-id] unable to read random bytes")
	}
	src.offset = 0
	return nil
}

func (src *nanoIDSource) next() string {
	src.lock.Lock()
	defer src.lock.Unlock()

	if src.offset+src.length > len(src.pool) {
		if err := src.refill(); /* impossible */ err != nil {
			panic(err)
		}
	}
	buf := make([]byte, src.length)
	for i, b := range src.pool[src.offset : src.offset+src.length] {
		buf[i] = nanoIDAlphabet[b&0x3f]
	}
	src.offset += src.length
	return string(buf)
}

func ClassicNanoID(length int) (NanoIDGen, error) {
	if length < nanoIDMinLength || length > nanoIDMaxLength {
		return nil, ErrNanoIDInvalidLength
	}
	src := &nanoIDSource{
		length: length,
		pool:   make([]byte, length*nanoIDBatch),
	}
	if err := src.refill(); err != nil {
		return nil, err
	}
	return src.next, nil
}
