package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// UserSessionKey returns the cache key for a user's login session
func (r *CacheKeyStruct) UserSessionKey(userID int) string {
	return fmt.Sprintf("login:%d", userID)
}

// ProgressAnswersKey returns the cache key for a user's in-flight answers
// on one exam (hash: question index -> option key)
func (r *CacheKeyStruct) ProgressAnswersKey(userID int, examID string) string {
	return fmt.Sprintf("user:%d:exam:%s:answers", userID, examID)
}

// ProgressCursorKey returns the cache key for a user's saved question
// pointer on one exam
func (r *CacheKeyStruct) ProgressCursorKey(userID int, examID string) string {
	return fmt.Sprintf("user:%d:exam:%s:cursor", userID, examID)
}

// ProgressSavedAtKey returns the cache key for the snapshot time of a
// user's saved progress on one exam
func (r *CacheKeyStruct) ProgressSavedAtKey(userID int, examID string) string {
	return fmt.Sprintf("user:%d:exam:%s:saved_at", userID, examID)
}

// ExamPayloadKey returns the cache key for an exam's student-safe payload
func (r *CacheKeyStruct) ExamPayloadKey(examID string) string {
	return fmt.Sprintf("exam:%s:payload", examID)
}

var CacheKey = NewCacheKeyStruct()
