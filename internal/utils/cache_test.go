package utils

import (
	"testing"
	"time"
)

func TestPageCacheSetGet(t *testing.T) {
	cache := GetCache()

	cache.Set("t1:key", "value", time.Minute)
	if got := cache.Get("t1:key"); got != "value" {
		t.Errorf("Get = %v, want value", got)
	}

	// 过期条目按不存在处理
	cache.Set("t1:stale", "old", -time.Second)
	if got := cache.Get("t1:stale"); got != nil {
		t.Errorf("expired Get = %v, want nil", got)
	}

	cache.Delete("t1:key")
	if got := cache.Get("t1:key"); got != nil {
		t.Errorf("deleted Get = %v, want nil", got)
	}
}

func TestPageCacheDeletePrefix(t *testing.T) {
	cache := GetCache()

	cache.Set("board:free:list:p1", 1, time.Minute)
	cache.Set("board:free:list:p2", 2, time.Minute)
	cache.Set("board:free:list:闲聊:like:p1", 3, time.Minute)
	cache.Set("board:game:list:p1", 4, time.Minute)

	cache.DeletePrefix("board:free:list:")

	for _, key := range []string{"board:free:list:p1", "board:free:list:p2", "board:free:list:闲聊:like:p1"} {
		if got := cache.Get(key); got != nil {
			t.Errorf("key %s survived prefix delete: %v", key, got)
		}
	}
	// 其他板块的缓存不受影响
	if got := cache.Get("board:game:list:p1"); got != 4 {
		t.Errorf("unrelated key purged, got %v", got)
	}
}
