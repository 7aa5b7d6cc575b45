package main

import (
	"bufio"
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"log"
	"net/http"
	"net/http/httputil"
	"time"

	"github.com/apibillme/cache"
)

const (
	defaultCacheSize = 256
	defaultCacheTTL  = 86400
)

// ReqCache replays upstream responses for identical requests. Entries live
// in memory only and expire the configured TTL after they were stored; reads
// do not extend them.
type ReqCache struct {
	client *http.Client
	store  cache.Cache
	log    *log.Logger
}

// NewReqCache returns nil when caching is disabled; callers fall back to the
// plain client in that case.
func NewReqCache(cfg *Config, client *http.Client) *ReqCache {
	if cfg.Cache.TTL <= 0 {
		return nil
	}
	size := cfg.Cache.Size
	if size <= 0 {
		size = defaultCacheSize
	}
	return &ReqCache{
		client: client,
		store:  cache.New(size,
			cache.WithTTL(time.Duration(cfg.Cache.TTL)*time.Second),
			cache.WithoutReset(),
		),
		log:    newLogger("(cache) "),
	}
}

func (rc *ReqCache) Do(req *http.Request) (*http.Response, error) {
	return rc.CachedFetch(req, rc.client)
}

func (rc *ReqCache) CachedFetch(req *http.Request, client *http.Client) (*http.Response, error) {
	reqBytes, _ := httputil.DumpRequest(req, true)
	md5Hash := md5.Sum(reqBytes)
	reqHash := hex.EncodeToString(md5Hash[:])
	if data, ok := rc.store.Get(reqHash); ok {
		res, err := http.ReadResponse(bufio.NewReader(bytes.NewReader(data.([]byte))), req)
		if err == nil {
			return res, nil
		}
		rc.log.Println("Problems decoding cached result", err.Error())
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp, nil
	}
	respBytes, err := httputil.DumpResponse(resp, true)
	resp.Body.Close()
	if err != nil {
		return nil, err
	}
	rc.log.Println("MISS", req.URL.Host)
	rc.store.Set(reqHash, respBytes)
	return http.ReadResponse(bufio.NewReader(bytes.NewReader(respBytes)), req)
}
