package redisservice

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/goccy/go-json"
)

const transcriptHistoryPrefix = Prefix + "transcript_history:" // A HASH for each meeting

// TranscriptChunk is a finished utterance shown to late joining viewers.
type TranscriptChunk struct {
	TranscriptId   uint64 `json:"transcript_id"`
	SpeakerId      uint64 `json:"speaker_id"`
	SpeakerName    string `json:"speaker_name"`
	OriginalLang   string `json:"original_lang"`
	OriginalText   string `json:"original_text"`
	TranslatedLang string `json:"translated_lang"`
	TranslatedText string `json:"translated_text"`
}

func (s *RedisService) formatTranscriptHistoryKey(meetingId string) string {
	return fmt.Sprintf("%s%s", transcriptHistoryPrefix, meetingId)
}

// AddTranscriptToHistory adds a chunk to the meeting's live history.
func (s *RedisService) AddTranscriptToHistory(meetingId string, chunk *TranscriptChunk, ttl time.Duration) error {
	key := s.formatTranscriptHistoryKey(meetingId)
	jsonData, err := json.Marshal(chunk)
	if err != nil {
		return err
	}

	// The field will be the timestamp
	field := fmt.Sprintf("%d", time.Now().UnixNano())

	pipe := s.rc.Pipeline()
	pipe.HSet(s.ctx, key, field, jsonData)
	pipe.Expire(s.ctx, key, ttl)

	_, err = pipe.Exec(s.ctx)
	return err
}

// GetTranscriptHistory returns the chunks of a meeting in insertion order.
func (s *RedisService) GetTranscriptHistory(meetingId string) ([]*TranscriptChunk, error) {
	key := s.formatTranscriptHistoryKey(meetingId)
	result, err := s.rc.HGetAll(s.ctx, key).Result()
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, nil
	}

	fields := make([]int64, 0, len(result))
	for f := range result {
		ts, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			continue
		}
		fields = append(fields, ts)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i] < fields[j] })

	chunks := make([]*TranscriptChunk, 0, len(fields))
	for _, ts := range fields {
		c := new(TranscriptChunk)
		if err := json.Unmarshal([]byte(result[strconv.FormatInt(ts, 10)]), c); err != nil {
			s.logger.WithError(err).Warnln("skipping broken transcript history entry")
			continue
		}
		chunks = append(chunks, c)
	}
	return chunks, nil
}

func (s *RedisService) DeleteTranscriptHistory(meetingId string) error {
	return s.rc.Del(s.ctx, s.formatTranscriptHistoryKey(meetingId)).Err()
}
