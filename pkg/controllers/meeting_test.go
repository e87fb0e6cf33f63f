package controllers

import (
	"net/http"
	"testing"

	"github.com/duolog/duolog-server/pkg/config"
	"github.com/duolog/duolog-server/pkg/dbmodels"
	"github.com/duolog/duolog-server/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createMeeting(t *testing.T, ta *testApp, userId string) *models.MeetingInfo {
	t.Helper()
	info := new(models.MeetingInfo)
	code, res := ta.call(t, http.MethodPost, "/api/meetings", userId, &models.CreateMeetingReq{
		Title:    "Design review",
		Speakers: []string{"Minji", "Tom"},
	}, info)
	require.Equal(t, http.StatusCreated, code, res.Msg)
	require.True(t, res.Status)
	return info
}

func TestHandleCreateMeeting(t *testing.T) {
	ta := setupApp(t)
	info := createMeeting(t, ta, "u1")

	assert.Equal(t, "Design review", info.Title)
	assert.Equal(t, config.MeetingStatusScheduled, info.Status)
	require.Len(t, info.Speakers, 2)
	assert.Equal(t, "Minji", info.Speakers[0].Name)

	code, res := ta.call(t, http.MethodPost, "/api/meetings", "", &models.CreateMeetingReq{}, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, res.Status)
	assert.Equal(t, config.UserIdRequired, res.Msg)
}

func TestHandleGetMeeting(t *testing.T) {
	ta := setupApp(t)
	info := createMeeting(t, ta, "u1")

	got := new(models.MeetingInfo)
	code, _ := ta.call(t, http.MethodGet, "/api/meetings/"+info.Id, "u1", nil, got)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, info.Id, got.Id)

	code, res := ta.call(t, http.MethodGet, "/api/meetings/"+info.Id, "u2", nil, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, config.MeetingAccessDenied, res.Msg)

	code, _ = ta.call(t, http.MethodGet, "/api/meetings/nope", "u1", nil, nil)
	assert.Equal(t, http.StatusNotFound, code)

	shared := new(models.MeetingInfo)
	code, _ = ta.call(t, http.MethodGet, "/share/"+info.ShareLink, "", nil, shared)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, info.Id, shared.Id)

	list := new(models.MeetingListRes)
	code, _ = ta.call(t, http.MethodGet, "/api/meetings?limit=5", "u1", nil, list)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, int64(1), list.Total)
}

func TestHandleUpdateAndDeleteMeeting(t *testing.T) {
	ta := setupApp(t)
	info := createMeeting(t, ta, "u1")

	title := "Retro"
	updated := new(models.MeetingInfo)
	code, _ := ta.call(t, http.MethodPut, "/api/meetings/"+info.Id, "u1", &models.UpdateMeetingReq{
		Title:    &title,
		Speakers: []models.SpeakerNameReq{{Id: info.Speakers[0].Id, Name: "Jiwoo"}},
	}, updated)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Retro", updated.Title)
	assert.Equal(t, "Jiwoo", updated.Speakers[0].Name)

	code, _ = ta.call(t, http.MethodDelete, "/api/meetings/"+info.Id, "u1", nil, nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = ta.call(t, http.MethodGet, "/api/meetings/"+info.Id, "u1", nil, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestHandleStartEndMeeting(t *testing.T) {
	ta := setupApp(t)
	info := createMeeting(t, ta, "u1")

	started := new(models.MeetingInfo)
	code, _ := ta.call(t, http.MethodPost, "/api/meetings/"+info.Id+"/start", "u1", nil, started)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, config.MeetingStatusInProgress, started.Status)

	ended := new(models.EndMeetingRes)
	code, _ = ta.call(t, http.MethodPost, "/api/meetings/"+info.Id+"/end", "u1", nil, ended)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, config.MeetingStatusCompleted, ended.Meeting.Status)

	code, _ = ta.call(t, http.MethodPost, "/api/meetings/"+info.Id+"/end", "u1", nil, nil)
	assert.Equal(t, http.StatusConflict, code)
}

func TestHandleStartMeeting_QuotaExceeded(t *testing.T) {
	ta := setupApp(t)
	info := createMeeting(t, ta, "u1")

	require.NoError(t, ta.conf.DB.Model(&dbmodels.User{}).Where("id = ?", "u1").Update("free_time_remaining", 0).Error)

	code, res := ta.call(t, http.MethodPost, "/api/meetings/"+info.Id+"/start", "u1", nil, nil)
	assert.Equal(t, http.StatusPaymentRequired, code)
	assert.Equal(t, config.FreeTimeExhausted, res.Msg)

	user := new(models.UserInfo)
	code, _ = ta.call(t, http.MethodPost, "/api/user/upgrade", "u1", nil, user)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, user.IsPremium)

	code, _ = ta.call(t, http.MethodPost, "/api/meetings/"+info.Id+"/start", "u1", nil, nil)
	assert.Equal(t, http.StatusOK, code)
}
