package models

import (
	"github.com/duolog/duolog-server/pkg/config"
	"github.com/duolog/duolog-server/pkg/dbmodels"
	"github.com/duolog/duolog-server/pkg/services/db"
	"github.com/sirupsen/logrus"
)

type UserInfo struct {
	Id                string `json:"id"`
	FreeTimeRemaining int64  `json:"free_time_remaining"`
	IsPremium         bool   `json:"is_premium"`
	TotalMeetingTime  int64  `json:"total_meeting_time"`
}

type UserModel struct {
	app    *config.AppConfig
	ds     *dbservice.DatabaseService
	logger *logrus.Entry
}

func NewUserModel(app *config.AppConfig, ds *dbservice.DatabaseService, logger *logrus.Logger) *UserModel {
	return &UserModel{
		app:    app,
		ds:     ds,
		logger: logger.WithField("model", "user"),
	}
}

// GetUser returns the user, creating it with the free time quota on the
// first request.
func (m *UserModel) GetUser(userId string) (*dbmodels.User, error) {
	if userId == "" {
		return nil, ErrUserIdRequired
	}
	u, err := m.ds.GetUser(userId)
	if err != nil {
		return nil, err
	}
	if u != nil {
		return u, nil
	}

	m.logger.WithField("userId", userId).Infoln("creating new user")
	return m.ds.GetOrCreateUser(userId, m.app.Quota.FreeSeconds, m.app.IsPremiumUser(userId))
}

func (m *UserModel) GetUserInfo(userId string) (*UserInfo, error) {
	u, err := m.GetUser(userId)
	if err != nil {
		return nil, err
	}
	return m.toUserInfo(u), nil
}

// Upgrade turns the user into a premium user, who is no longer limited by
// the free time quota.
func (m *UserModel) Upgrade(userId string) (*UserInfo, error) {
	if _, err := m.GetUser(userId); err != nil {
		return nil, err
	}
	if _, err := m.ds.SetUserPremium(userId, true); err != nil {
		return nil, err
	}
	return m.GetUserInfo(userId)
}

func (m *UserModel) isPremium(u *dbmodels.User) bool {
	return u.IsPremium || m.app.IsPremiumUser(u.ID)
}

func (m *UserModel) toUserInfo(u *dbmodels.User) *UserInfo {
	return &UserInfo{
		Id:                u.ID,
		FreeTimeRemaining: u.FreeTimeRemaining,
		IsPremium:         m.isPremium(u),
		TotalMeetingTime:  u.TotalMeetingTime,
	}
}
