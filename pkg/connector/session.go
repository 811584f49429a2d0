package connector

import (
	"github.com/MF-FOOM/chessgpt/pkg/chessgpt"
)

// Session receives the server's notifications over the connection.
type Session struct {
	conn *Connection
}

func (sess *Session) Update(update *chessgpt.Update, unused *bool) error {
	sess.conn.update(update)
	return nil
}
