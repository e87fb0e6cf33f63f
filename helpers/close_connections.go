package helpers

import (
	"github.com/duolog/duolog-server/pkg/config"
)

func HandleCloseConnections(appCnf *config.AppConfig) {
	if appCnf == nil {
		return
	}

	// pending publishes go out before the connection closes
	if appCnf.NatsConn != nil {
		if err := appCnf.NatsConn.Drain(); err != nil {
			appCnf.NatsConn.Close()
		}
	}

	if appCnf.RDS != nil {
		_ = appCnf.RDS.Close()
	}

	if appCnf.DB != nil {
		if db, err := appCnf.DB.DB(); err == nil {
			_ = db.Close()
		}
	}

	if appCnf.Logger != nil {
		appCnf.Logger.Infoln("all connections closed")
	}
}
