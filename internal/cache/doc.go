// Package cache provides a generic LRU cache for GPU objects that are
// expensive to create and must be released explicitly.
//
//	c := cache.New[key, hal.BindGroup](64, func(k key, bg hal.BindGroup) {
//		retire(bg)
//	})
//	bg, err := c.GetOrCreate(k, func() (hal.BindGroup, error) {
//		return device.CreateBindGroup(desc)
//	})
//
// Values leave the cache through eviction, Delete, DeleteFunc or Clear;
// each path hands the value to the eviction callback exactly once.
//
// A Cache is not safe for concurrent use.
package cache
