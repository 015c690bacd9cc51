package server

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
	"github.com/zeebo/xxh3"

	"github.com/crease-gg/crease/protocol"
)

// writeRecordingTick appends the current tick to the recording stream. The
// format mirrors the live game state packet without the datagram header, so
// recordings delta-compress against the previously recorded tick.
func (s *Server) writeRecordingTick() {
	w := s.recording
	w.WriteByteAligned(5)
	gameOver := uint32(0)
	if s.Scoreboard.GameOver {
		gameOver = 1
	}
	w.WriteBits(1, gameOver)
	w.WriteBits(8, s.Scoreboard.RedScore)
	w.WriteBits(8, s.Scoreboard.BlueScore)
	w.WriteBits(16, s.Scoreboard.Time)
	w.WriteBits(16, s.Scoreboard.GoalMessageTimer)
	w.WriteBits(8, s.Scoreboard.Period)

	protocol.WriteObjects(w, s.savedPackets.get(0), s.baselineFrame(s.recordingLastPacket), s.packet, s.recordingLastPacket)
	s.recordingLastPacket = s.packet

	remaining := len(s.recordingMessages) - s.recordingMsgPos
	w.WriteBits(16, uint32(remaining))
	w.WriteBits(16, uint32(s.recordingMsgPos))
	for _, m := range s.recordingMessages[s.recordingMsgPos:] {
		protocol.WriteMessage(w, m)
	}
	s.recordingMsgPos = len(s.recordingMessages)
	w.ReplayFix()
}

func (s *Server) resetRecording() {
	s.recording = protocol.NewWriter(nil)
	s.recordingMsgPos = 0
	s.recordingLastPacket = ^uint32(0)
	s.recordingMessages = s.recordingMessages[:0]
}

// saveRecording seals the recording buffer and hands it to the configured
// saver on a background goroutine. A no-op when recording is off or empty.
func (s *Server) saveRecording() {
	if s.replayMode != ReplayOn || s.saver == nil || s.recording.Len() == 0 {
		return
	}
	data := s.recording.Bytes()
	sealed := make([]byte, 8+len(data))
	binary.LittleEndian.PutUint32(sealed[0:4], 0)
	binary.LittleEndian.PutUint32(sealed[4:8], uint32(len(data)))
	copy(sealed[8:], data)

	log := s.log.WithFields(logrus.Fields{
		"game":        s.sessionID,
		"size":        len(sealed),
		"fingerprint": fmt.Sprintf("%016x", xxh3.Hash(sealed)),
	})
	log.Info("Saving game recording")

	serverName := s.config.ServerName
	start := s.startTime
	if start.IsZero() {
		start = time.Now()
	}
	saver := s.saver
	go func() {
		if err := saver.Save(sealed, serverName, start); err != nil {
			log.WithError(err).Error("Could not save game recording")
			sentry.CaptureException(err)
		}
	}()
}
