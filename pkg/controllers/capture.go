package controllers

import (
	"strconv"
	"sync"

	"github.com/duolog/duolog-server/pkg/models"
	natsservice "github.com/duolog/duolog-server/pkg/services/nats"
	"github.com/goccy/go-json"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// CaptureController serves the websockets of a meeting: one per capturing
// device and any number of live viewers.
type CaptureController struct {
	CaptureModel    *models.CaptureModel
	MeetingModel    *models.MeetingModel
	TranscriptModel *models.TranscriptModel
	natsService     *natsservice.NatsService
	logger          *logrus.Entry
}

func NewCaptureController(cm *models.CaptureModel, mm *models.MeetingModel, tm *models.TranscriptModel, natsService *natsservice.NatsService, logger *logrus.Logger) *CaptureController {
	return &CaptureController{
		CaptureModel:    cm,
		MeetingModel:    mm,
		TranscriptModel: tm,
		natsService:     natsService,
		logger:          logger.WithField("controller", "capture"),
	}
}

// HandleUpgradeCheck lets only websocket upgrades through.
func (cc *CaptureController) HandleUpgradeCheck(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		c.Locals("allowed", true)
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// wsWriter serializes writes, the connection allows a single writer only.
type wsWriter struct {
	mu     sync.Mutex
	conn   *websocket.Conn
	logger *logrus.Entry
}

func (w *wsWriter) write(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		w.logger.WithError(err).Errorln("failed to marshal websocket message")
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if err = w.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		w.logger.WithError(err).Debugln("failed to write websocket message")
	}
}

func (cc *CaptureController) HandleCapture() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userId, _ := conn.Locals("userId").(string)
		meetingId := conn.Params("id")
		speakerId, _ := strconv.ParseUint(conn.Query("speakerId"), 10, 64)
		log := cc.logger.WithFields(logrus.Fields{
			"meetingId": meetingId,
			"userId":    userId,
		})
		w := &wsWriter{conn: conn, logger: log}

		session, err := cc.CaptureModel.NewSession(&models.CaptureSessionReq{
			UserId:    userId,
			MeetingId: meetingId,
			SpeakerId: speakerId,
			Lang:      conn.Query("lang"),
		}, func(msg *models.CaptureMessage) {
			w.write(msg)
		})
		if err != nil {
			w.write(&models.CaptureMessage{Type: models.CaptureMsgError, Message: err.Error()})
			return
		}
		defer session.Close()
		log.WithField("sessionId", session.Id()).Infoln("capture connected")

		for {
			mt, data, err := conn.ReadMessage()
			if err != nil {
				log.WithError(err).Debugln("capture connection closed")
				return
			}

			switch mt {
			case websocket.BinaryMessage:
				if err = session.WriteAudio(data); err != nil {
					log.WithError(err).Warnln("failed to forward audio")
				}
			case websocket.TextMessage:
				cmd := new(models.CaptureCommand)
				if err = json.Unmarshal(data, cmd); err == nil {
					err = session.HandleCommand(cmd)
				}
				if err != nil {
					w.write(&models.CaptureMessage{Type: models.CaptureMsgError, Message: err.Error()})
				}
			}
		}
	})
}

type liveMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// HandleLive streams the transcript of a meeting. The owner or anyone with
// the share link may watch.
func (cc *CaptureController) HandleLive() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userId, _ := conn.Locals("userId").(string)
		meetingId := conn.Params("id")
		log := cc.logger.WithField("meetingId", meetingId)
		w := &wsWriter{conn: conn, logger: log}

		if err := cc.checkViewer(userId, meetingId, conn.Query("share")); err != nil {
			w.write(&liveMessage{Type: "error", Payload: err.Error()})
			return
		}

		history, err := cc.TranscriptModel.LiveHistory(meetingId)
		if err != nil {
			log.WithError(err).Warnln("failed to load live history")
		}
		w.write(&liveMessage{Type: "history", Payload: history})

		sub, err := cc.natsService.SubscribeMeetingEvents(meetingId, func(ev *natsservice.MeetingEvent) {
			w.write(&liveMessage{Type: string(ev.Type), Payload: ev})
		})
		if err != nil {
			log.WithError(err).Errorln("failed to subscribe to meeting events")
			w.write(&liveMessage{Type: "error", Payload: err.Error()})
			return
		}
		defer func() {
			_ = sub.Unsubscribe()
		}()

		for {
			// viewers don't send anything, reading detects the close
			if _, _, err = conn.ReadMessage(); err != nil {
				return
			}
		}
	})
}

func (cc *CaptureController) checkViewer(userId, meetingId, shareLink string) error {
	if shareLink != "" {
		info, err := cc.MeetingModel.GetMeetingByShareLink(shareLink)
		if err != nil {
			return err
		}
		if info.Id != meetingId {
			return models.ErrAccessDenied
		}
		return nil
	}
	_, err := cc.MeetingModel.GetOwnedMeeting(userId, meetingId)
	return err
}
