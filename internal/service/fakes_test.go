package service

import (
	"context"
	"sync"
)

type stubCompleter struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
}

func (s *stubCompleter) Complete(_ context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)
	return s.reply, s.err
}

func (s *stubCompleter) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prompts)
}

type memCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	getErr  error
}

func newMemCache() *memCache {
	return &memCache{entries: map[string][]byte{}}
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	data, ok := c.entries[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	return data, nil
}

func (c *memCache) Set(_ context.Context, key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

type fakeStore struct {
	keys []string
	data [][]byte
	err  error
}

func (f *fakeStore) Upload(_ context.Context, key string, data []byte, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.keys = append(f.keys, key)
	f.data = append(f.data, data)
	return "https://bucket.s3.amazonaws.com/" + key, nil
}
