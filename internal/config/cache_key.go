package config

import "fmt"

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// ExamPaperKey returns the cache key for a student-facing exam paper.
func (r *CacheKeyStruct) ExamPaperKey(examID string) string {
	return fmt.Sprintf("exam:%s:paper", examID)
}

// ResultMonitorChannel returns the Redis PubSub channel for graded-result events.
func (r *CacheKeyStruct) ResultMonitorChannel() string {
	return "results:graded"
}

var CacheKey = NewCacheKeyStruct()
