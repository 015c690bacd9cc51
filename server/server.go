// Package server implements the authoritative game server core: the UDP
// endpoint, the 100 Hz tick loop, the player table and the reliable message
// stream. Game rules are plugged in through the Behaviour interface.
package server

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/crease-gg/crease/ban"
	"github.com/crease-gg/crease/game"
	"github.com/crease-gg/crease/internal"
	"github.com/crease-gg/crease/physics"
	"github.com/crease-gg/crease/protocol"
	"github.com/crease-gg/crease/record"
)

// clientCompatibilityVersion is the only protocol version accepted on join
// and reported to server browsers.
const clientCompatibilityVersion = 55

// inactivityTimeoutTicks is how many ticks a client may stay silent before
// it is dropped.
const inactivityTimeoutTicks = 500

// savedPacketCount is how many recent object frames are kept as delta
// baselines. Clients acknowledging older frames get a full update.
const savedPacketCount = 192

// Server is the game server core. All mutation happens on the tick
// goroutine.
type Server struct {
	log       *logrus.Logger
	config    Config
	behaviour Behaviour
	physics   game.PhysicsConfig
	rink      *game.Rink

	players [game.PlayerSlotCount]playerSlot

	gameID    uint32
	sessionID uuid.UUID
	startTime time.Time
	active    bool
	allowJoin bool
	chatMuted bool

	// Scoreboard is the clock and score state broadcast to every client.
	// Behaviours mutate it directly.
	Scoreboard game.ScoreboardValues

	puckSlots int
	pucks     []*game.Puck

	persistentMessages []protocol.ServerMessage
	recordingMessages  []protocol.ServerMessage

	packet       uint32
	savedPackets *ring[protocol.ObjectFrame]
	savedPings   *ring[time.Time]

	history tickHistory

	replayMode          ReplayMode
	recording           *protocol.Writer
	recordingMsgPos     int
	recordingLastPacket uint32

	bans  ban.Checker
	saver record.Saver

	conn *net.UDPConn
}

// New assembles a server around a behaviour. Run must be called to start it.
func New(log *logrus.Logger, config Config, physCfg game.PhysicsConfig, behaviour Behaviour, bans ban.Checker, saver record.Saver) *Server {
	if config.PlayerMax < 1 {
		config.PlayerMax = 1
	}
	if config.PlayerMax > game.PlayerSlotCount {
		config.PlayerMax = game.PlayerSlotCount
	}
	s := &Server{
		log:          log,
		config:       config,
		behaviour:    behaviour,
		physics:      physCfg,
		rink:         game.NewRink(30, 61, 8.5),
		allowJoin:    true,
		replayMode:   config.ReplaysEnabled,
		savedPackets: newRing[protocol.ObjectFrame](savedPacketCount),
		savedPings:   newRing[time.Time](pingHistoryLength),
		recording:    protocol.NewWriter(nil),
		bans:         bans,
		saver:        saver,
	}
	s.newGame(behaviour.InitialGameValues())
	return s
}

// Rink returns the playing surface geometry.
func (s *Server) Rink() *game.Rink {
	return s.rink
}

// PhysicsConfig returns the simulation parameters. Behaviours may tune them
// between ticks.
func (s *Server) PhysicsConfig() *game.PhysicsConfig {
	return &s.physics
}

// GameStep returns the current simulation step.
func (s *Server) GameStep() uint32 {
	return s.history.gameStep
}

// ServerName returns the configured display name.
func (s *Server) ServerName() string {
	return s.config.ServerName
}

// Log returns the server's logger for behaviours to share.
func (s *Server) Log() *logrus.Logger {
	return s.log
}

type incomingPacket struct {
	addr net.UDPAddr
	msg  protocol.ClientMessage
}

// Run binds the UDP socket and drives the tick loop until ctx is cancelled.
func (s *Server) Run(ctx context.Context, port uint16) error {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{Port: int(port)})
	if err != nil {
		return fmt.Errorf("bind udp port %d: %w", port, err)
	}
	defer conn.Close()
	s.conn = conn

	s.log.WithField("port", port).Info("Server listening")
	s.behaviour.Init(s)

	if s.config.Public != "" {
		go s.notifyMaster(ctx)
	}

	packets := make(chan incomingPacket, 256)
	go s.readPackets(ctx, packets)

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			s.tick(now)
		case p := <-packets:
			s.handleMessage(p.addr, p.msg)
		}
	}
}

func (s *Server) readPackets(ctx context.Context, out chan<- incomingPacket) {
	buf := make([]byte, 4096)
	for {
		n, addr, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
			}
			if strings.Contains(err.Error(), "use of closed") {
				return
			}
			continue
		}
		msg, err := protocol.ParseMessage(buf[:n])
		if err != nil {
			continue
		}
		select {
		case out <- incomingPacket{addr: *addr, msg: msg}:
		case <-ctx.Done():
			return
		}
	}
}

func (s *Server) tick(now time.Time) {
	if s.realPlayerCount() == 0 {
		if s.active {
			s.log.WithFields(logrus.Fields{
				"game": s.sessionID,
				"id":   s.gameID,
			}).Info("Game abandoned")
			s.newGame(s.behaviour.InitialGameValues())
			s.allowJoin = true
		}
		return
	}
	if !s.active {
		s.active = true
		s.startTime = now
		s.behaviour.GameStarted(s)
		s.log.WithFields(logrus.Fields{
			"game": s.sessionID,
			"id":   s.gameID,
		}).Info("Game started")
	}
	s.removeInactivePlayers()
	s.behaviour.BeforeTick(s)

	if entry, ok := s.history.popReplay(); ok {
		s.savedPackets.push(entry.tick.packets)
		s.packet++
		s.sendUpdates(entry.tick.gameStep, entry.forceView, now)
	} else {
		s.gameStep()
		s.sendUpdates(s.history.gameStep, -1, now)
	}
	s.savedPings.push(now)
}

func (s *Server) gameStep() {
	s.history.gameStep++

	skaters := make([]physics.SkaterEntry, 0, s.realPlayerCount())
	for i := range s.players {
		slot := &s.players[i]
		if slot.player == nil || slot.player.Skater == nil {
			continue
		}
		skaters = append(skaters, physics.SkaterEntry{
			Id:     game.PlayerId{Index: game.PlayerIndex(i), Counter: slot.counter},
			Skater: slot.player.Skater,
			Input:  &slot.player.Input,
		})
	}
	pucks := make([]physics.PuckEntry, 0, len(s.pucks))
	for i, p := range s.pucks {
		if p != nil {
			pucks = append(pucks, physics.PuckEntry{Index: i, Puck: p})
		}
	}

	events := physics.Simulate(skaters, pucks, s.rink, &s.physics)

	frame := s.currentFrame()
	s.behaviour.AfterTick(s, events)
	s.history.pushSaved(replayTick{gameStep: s.history.gameStep, packets: frame})
	s.savedPackets.push(frame)
	s.packet++

	if s.replayMode == ReplayOn && s.behaviour.IncludeTickInRecording(s) {
		s.writeRecordingTick()
	}
}

// currentFrame quantizes every world object for transmission.
func (s *Server) currentFrame() protocol.ObjectFrame {
	var frame protocol.ObjectFrame
	for i, p := range s.pucks {
		if p != nil {
			frame[i] = protocol.ObjectPacket{Kind: protocol.ObjectPuck, Puck: protocol.PuckPacketOf(p)}
		}
	}
	for i := range s.players {
		p := s.players[i].player
		if p != nil && p.Skater != nil {
			frame[p.ObjectIndex] = protocol.ObjectPacket{Kind: protocol.ObjectSkater, Skater: protocol.SkaterPacketOf(p.Skater)}
		}
	}
	return frame
}

func (s *Server) handleMessage(addr net.UDPAddr, msg protocol.ClientMessage) {
	switch m := msg.(type) {
	case protocol.InfoRequest:
		s.requestInfo(addr, m)
	case protocol.Join:
		s.playerJoin(addr, m)
	case protocol.Update:
		s.playerUpdate(addr, m)
	case protocol.Exit:
		s.playerExit(addr)
	}
}

func (s *Server) requestInfo(addr net.UDPAddr, req protocol.InfoRequest) {
	bufp := internal.PacketPool.Get().(*[]byte)
	defer internal.PacketPool.Put(bufp)
	w := protocol.NewWriter((*bufp)[:0])
	s.writeInfoResponse(w, req.Ping)
	s.conn.WriteToUDP(w.Bytes(), &addr)
}

func (s *Server) writeInfoResponse(w *protocol.Writer, ping uint32) {
	w.WriteBytesAligned(protocol.Header[:])
	w.WriteByteAligned(1)
	w.WriteBits(8, clientCompatibilityVersion)
	w.WriteU32Aligned(ping)
	w.WriteBits(8, uint32(s.realPlayerCount()))
	w.WriteBits(4, 4)
	w.WriteBits(4, s.behaviour.ServerListTeamSize())
	w.WriteBytesAlignedPadded(32, []byte(s.config.ServerName))
}

func (s *Server) playerJoin(addr net.UDPAddr, join protocol.Join) {
	if s.realPlayerCount() >= s.config.PlayerMax {
		return
	}
	if join.Version != clientCompatibilityVersion {
		return
	}
	if _, _, ok := s.findPlayerByAddr(addr); ok {
		return
	}
	ip, _ := addrIP(addr)
	if s.bans.IsBanned(ip) {
		s.log.WithField("addr", addr.String()).Info("Banned player rejected")
		return
	}
	if !s.allowJoin {
		s.log.WithField("addr", addr.String()).Info("Join not allowed")
		return
	}

	id, ok := s.addPlayer(join.PlayerName, addr)
	if !ok {
		return
	}
	for _, line := range s.config.Welcome {
		s.AddDirectedServerChatMessage(line, id)
	}
	s.behaviour.AfterPlayerJoin(s, id)
	s.log.WithFields(logrus.Fields{
		"name":  join.PlayerName,
		"index": id.Index,
		"addr":  addr.String(),
	}).Info("Player joined")
	s.AddServerChatMessage(fmt.Sprintf("%s joined", join.PlayerName))
}

func (s *Server) playerUpdate(addr net.UDPAddr, update protocol.Update) {
	id, player, ok := s.findPlayerByAddr(addr)
	if !ok {
		return
	}
	n := player.net

	if update.HasDeltatime {
		n.deltatime = update.Deltatime
	}
	if update.Version.HasPing() {
		diff := s.packet - update.NewKnownPacket
		if sent := s.savedPings.get(int(diff)); sent != nil {
			n.lastPing.push(pingSample(*sent, time.Now()))
		}
	}

	n.inactivity = 0
	n.version = update.Version
	n.gameID = update.CurrentGameId
	n.knownPacket = update.NewKnownPacket
	n.knownMsgPos = update.KnownMsgPos
	player.Input = update.Input

	if update.HasChat && int(update.ChatRep) != n.chatRep {
		n.chatRep = int(update.ChatRep)
		s.processMessage(update.ChatMessage, id)
	}
}

func (s *Server) playerExit(addr net.UDPAddr) {
	id, player, ok := s.findPlayerByAddr(addr)
	if !ok {
		return
	}
	name := player.Name
	s.behaviour.BeforePlayerExit(s, id, ExitDisconnected)
	s.removePlayer(id)
	s.log.WithFields(logrus.Fields{
		"name":  name,
		"index": id.Index,
	}).Info("Player exited")
	s.AddServerChatMessage(fmt.Sprintf("%s exited", name))
}

func (s *Server) removeInactivePlayers() {
	var timedOut []game.PlayerId
	for i := range s.players {
		slot := &s.players[i]
		if slot.player == nil || slot.player.net == nil {
			continue
		}
		slot.player.net.inactivity++
		if slot.player.net.inactivity > inactivityTimeoutTicks {
			timedOut = append(timedOut, game.PlayerId{Index: game.PlayerIndex(i), Counter: slot.counter})
		}
	}
	for _, id := range timedOut {
		player := s.Player(id)
		if player == nil {
			continue
		}
		name := player.Name
		s.behaviour.BeforePlayerExit(s, id, ExitTimeout)
		s.removePlayer(id)
		s.log.WithFields(logrus.Fields{
			"name":  name,
			"index": id.Index,
		}).Info("Player timed out")
		s.AddServerChatMessage(fmt.Sprintf("%s timed out", name))
	}
}

// sendUpdates transmits the current frame to every connected client.
// forceView overrides per-player camera targets during goal replays; pass a
// negative index for normal play.
func (s *Server) sendUpdates(gameStep uint32, forceView game.PlayerIndex, now time.Time) {
	bufp := internal.PacketPool.Get().(*[]byte)
	defer internal.PacketPool.Put(bufp)

	frame := s.savedPackets.get(0)
	for i := range s.players {
		player := s.players[i].player
		if player == nil || player.net == nil {
			continue
		}
		n := player.net
		w := protocol.NewWriter((*bufp)[:0])
		w.WriteBytesAligned(protocol.Header[:])
		if n.gameID != s.gameID {
			w.WriteByteAligned(6)
			w.WriteU32Aligned(s.gameID)
		} else {
			w.WriteByteAligned(5)
			w.WriteU32Aligned(s.gameID)
			w.WriteU32Aligned(gameStep)
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
			view := n.viewPlayerIdx
			if forceView >= 0 {
				view = forceView
			}
			w.WriteBits(8, uint32(view))
			if n.version.HasPing() {
				w.WriteU32Aligned(n.deltatime)
			}
			if n.version.HasRules() {
				w.WriteU32Aligned(rulesBits(s.Scoreboard.Rules))
			}
			protocol.WriteObjects(w, frame, s.baselineFrame(n.knownPacket), s.packet, n.knownPacket)

			pos, count := messageWindow(n.knownMsgPos, len(n.messages))
			w.WriteBits(4, uint32(count))
			w.WriteBits(16, uint32(pos))
			for _, m := range n.messages[pos : pos+count] {
				protocol.WriteMessage(w, m)
			}
		}
		s.conn.WriteToUDP(w.Bytes(), &n.addr)
	}
	*bufp = (*bufp)[:0]
}

// baselineFrame returns the frame the client last acknowledged, if it is
// recent enough to delta against.
func (s *Server) baselineFrame(knownPacket uint32) *protocol.ObjectFrame {
	diff := s.packet - knownPacket
	if diff == 0 || diff > savedPacketCount {
		return nil
	}
	return s.savedPackets.get(int(diff))
}

// messageWindow selects the slice of the reliable message stream to resend,
// starting at the client's acknowledged position.
func messageWindow(knownPos, total int) (pos, count int) {
	if knownPos > total {
		return total, 0
	}
	count = total - knownPos
	if count > 15 {
		count = 15
	}
	return knownPos, count
}

func rulesBits(r game.RulesState) uint32 {
	switch r.Tag {
	case game.RulesOffside:
		return 4
	case game.RulesIcing:
		return 8
	default:
		v := uint32(0)
		if r.OffsideWarning {
			v |= 1
		}
		if r.IcingWarning {
			v |= 2
		}
		return v
	}
}

// NewGame resets the world and starts a fresh game. Behaviours call this at
// the end of a match.
func (s *Server) NewGame(values InitialGameValues) {
	s.newGame(values)
}

func (s *Server) newGame(values InitialGameValues) {
	s.saveRecording()

	s.gameID++
	s.sessionID = uuid.New()
	s.active = false
	s.Scoreboard = values.Values
	s.puckSlots = values.PuckSlots
	if s.puckSlots > game.ObjectSlotCount {
		s.puckSlots = game.ObjectSlotCount
	}
	s.pucks = make([]*game.Puck, s.puckSlots)

	s.packet = ^uint32(0)
	s.savedPackets.clear()
	s.savedPings.clear()
	s.history.reset()

	s.persistentMessages = s.persistentMessages[:0]
	s.resetRecording()

	for i := range s.players {
		player := s.players[i].player
		if player == nil {
			continue
		}
		player.Skater = nil
		player.ObjectIndex = -1
		if player.net != nil {
			player.net.resetGameState()
		}
	}
	for i := range s.players {
		player := s.players[i].player
		if player == nil {
			continue
		}
		s.addGlobalMessage(protocol.PlayerUpdateMessage{
			PlayerIndex: game.PlayerIndex(i),
			InServer:    true,
			PlayerName:  player.Name,
			ObjectIndex: -1,
		}, true, true)
	}
}

// notifyMaster registers the server with the master list. The master replies
// with the address of its UDP listener; a keepalive is sent there every ten
// seconds until the registration expires and the address is fetched again.
func (s *Server) notifyMaster(ctx context.Context) {
	keepalive := append([]byte{}, protocol.Header[:]...)
	keepalive = append(keepalive, ' ')
	for {
		target, err := s.fetchMasterAddr(ctx)
		if err != nil {
			s.log.WithError(err).Warn("Could not reach master server")
			if !sleepCtx(ctx, 15*time.Second) {
				return
			}
			continue
		}
		for i := 0; i < 60; i++ {
			s.conn.WriteToUDP(keepalive, target)
			if !sleepCtx(ctx, 10*time.Second) {
				return
			}
		}
	}
}

func (s *Server) fetchMasterAddr(ctx context.Context) (*net.UDPAddr, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.config.Public, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return nil, err
	}
	fields := strings.Fields(string(body))
	if len(fields) < 3 {
		return nil, fmt.Errorf("malformed master response %q", body)
	}
	return net.ResolveUDPAddr("udp", net.JoinHostPort(fields[1], fields[2]))
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
