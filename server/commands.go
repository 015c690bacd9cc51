package server

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/crease-gg/crease/game"
)

// Version and GitRevision are stamped at build time.
var (
	Version     = "dev"
	GitRevision = "unknown"
)

func (s *Server) processMessage(message string, id game.PlayerId) {
	player := s.Player(id)
	if player == nil {
		return
	}
	if strings.HasPrefix(message, "/") {
		cmd, arg, _ := strings.Cut(message[1:], " ")
		arg = strings.TrimSpace(arg)
		if cmd == "" {
			return
		}
		s.processCommand(cmd, arg, id)
		return
	}
	switch player.Mute {
	case NotMuted:
		if s.chatMuted && !player.IsAdmin {
			return
		}
		s.log.WithFields(logrus.Fields{
			"name":  player.Name,
			"index": id.Index,
		}).Info(message)
		s.AddUserChatMessage(message, id)
	case ShadowMuted:
		s.addDirectedUserChatMessage(message, id.Index, id)
	case Muted:
	}
}

func (s *Server) processCommand(cmd, arg string, id game.PlayerId) {
	switch cmd {
	case "enablejoin":
		s.setAllowJoin(id, true)
	case "disablejoin":
		s.setAllowJoin(id, false)
	case "mute":
		s.mutePlayer(id, arg, Muted)
	case "unmute":
		s.mutePlayer(id, arg, NotMuted)
	case "shadowmute":
		s.mutePlayer(id, arg, ShadowMuted)
	case "mutechat":
		s.setChatMute(id, true)
	case "unmutechat":
		s.setChatMute(id, false)
	case "kick":
		s.kickPlayer(id, arg, false)
	case "kickall":
		s.kickAllMatching(id, arg, false)
	case "ban":
		s.kickPlayer(id, arg, true)
	case "banall":
		s.kickAllMatching(id, arg, true)
	case "clearbans":
		s.clearBans(id)
	case "replay", "record":
		s.setReplayMode(id, arg)
	case "lefty":
		s.setHand(id, game.HandLeft)
	case "righty":
		s.setHand(id, game.HandRight)
	case "admin":
		s.adminLogin(id, arg)
	case "serverrestart":
		s.restartServer(id)
	case "list":
		first := game.PlayerIndex(0)
		if arg != "" {
			parsed, ok := game.ParsePlayerIndex(arg)
			if !ok {
				return
			}
			first = parsed
		}
		s.listPlayers(id, first)
	case "search":
		s.searchPlayers(id, arg)
	case "ping":
		if index, ok := game.ParsePlayerIndex(arg); ok {
			s.pingPlayer(id, index)
		}
	case "pings":
		s.resolveByName(id, arg, "ping", s.pingPlayer)
	case "view":
		if index, ok := game.ParsePlayerIndex(arg); ok {
			s.viewPlayer(id, index)
		}
	case "views":
		s.resolveByName(id, arg, "view", s.viewPlayer)
	case "restoreview":
		s.restoreView(id)
	case "t":
		s.addUserTeamMessage(arg, id)
	case "version":
		s.AddDirectedServerChatMessage(fmt.Sprintf("Server version %s", Version), id)
	case "git":
		s.AddDirectedServerChatMessage(fmt.Sprintf("Git revision %s", GitRevision), id)
	default:
		s.behaviour.HandleCommand(s, cmd, arg, id)
	}
}

// CheckAdmin reports whether the player may use admin commands, telling them
// to log in otherwise.
func (s *Server) CheckAdmin(id game.PlayerId) (*Player, bool) {
	player := s.Player(id)
	if player == nil {
		return nil, false
	}
	if !player.IsAdmin {
		s.AddDirectedServerChatMessage("Please log in before using that command", id)
		return nil, false
	}
	return player, true
}

func (s *Server) adminLogin(id game.PlayerId, password string) {
	player := s.Player(id)
	if player == nil {
		return
	}
	if s.config.Password == "" || password != s.config.Password {
		s.log.WithFields(logrus.Fields{
			"name":  player.Name,
			"index": id.Index,
		}).Warn("Failed admin login attempt")
		s.AddDirectedServerChatMessage("Incorrect password", id)
		return
	}
	player.IsAdmin = true
	s.log.WithFields(logrus.Fields{
		"name":  player.Name,
		"index": id.Index,
	}).Info("Admin login")
	s.AddDirectedServerChatMessage("Successfully logged in as admin", id)
}

func (s *Server) setAllowJoin(id game.PlayerId, allowed bool) {
	admin, ok := s.CheckAdmin(id)
	if !ok {
		return
	}
	s.allowJoin = allowed
	if allowed {
		s.AddServerChatMessage(fmt.Sprintf("%s enabled joins", admin.Name))
	} else {
		s.AddServerChatMessage(fmt.Sprintf("%s disabled joins", admin.Name))
	}
}

func (s *Server) mutePlayer(id game.PlayerId, arg string, status MuteStatus) {
	_, ok := s.CheckAdmin(id)
	if !ok {
		return
	}
	index, ok := game.ParsePlayerIndex(arg)
	if !ok {
		return
	}
	_, target, ok := s.PlayerAtIndex(index)
	if !ok {
		return
	}
	target.Mute = status
	switch status {
	case Muted:
		s.AddServerChatMessage(fmt.Sprintf("%s muted", target.Name))
	case NotMuted:
		s.AddServerChatMessage(fmt.Sprintf("%s unmuted", target.Name))
	case ShadowMuted:
		s.AddDirectedServerChatMessage(fmt.Sprintf("%s shadowmuted", target.Name), id)
	}
}

func (s *Server) setChatMute(id game.PlayerId, muted bool) {
	admin, ok := s.CheckAdmin(id)
	if !ok {
		return
	}
	s.chatMuted = muted
	if muted {
		s.AddServerChatMessage(fmt.Sprintf("%s muted chat", admin.Name))
	} else {
		s.AddServerChatMessage(fmt.Sprintf("%s unmuted chat", admin.Name))
	}
}

func (s *Server) kickPlayer(id game.PlayerId, arg string, banAddr bool) {
	index, ok := game.ParsePlayerIndex(arg)
	if !ok {
		return
	}
	admin, ok := s.CheckAdmin(id)
	if !ok {
		return
	}
	if index == id.Index {
		if banAddr {
			s.AddDirectedServerChatMessage("You cannot ban yourself", id)
		} else {
			s.AddDirectedServerChatMessage("You cannot kick yourself", id)
		}
		return
	}
	targetId, target, ok := s.PlayerAtIndex(index)
	if !ok {
		return
	}
	s.kick(id, admin.Name, targetId, target, banAddr)
}

func (s *Server) kick(adminId game.PlayerId, adminName string, targetId game.PlayerId, target *Player, banAddr bool) {
	name := target.Name
	net := target.net
	s.behaviour.BeforePlayerExit(s, targetId, ExitAdminKicked)
	s.removePlayer(targetId)
	if banAddr && net != nil {
		if ip, ok := addrIP(net.addr); ok {
			s.bans.Ban(ip)
		}
		s.AddServerChatMessage(fmt.Sprintf("%s banned by %s", name, adminName))
	} else {
		s.AddServerChatMessage(fmt.Sprintf("%s kicked by %s", name, adminName))
	}
	s.log.WithFields(logrus.Fields{
		"name":   name,
		"admin":  adminName,
		"banned": banAddr,
	}).Info("Player kicked")
}

type nameMatching uint8

const (
	matchEquals nameMatching = iota
	matchStartsWith
	matchEndsWith
	matchContains
)

func parseNamePattern(pattern string) (string, nameMatching) {
	starts := strings.HasSuffix(pattern, "%")
	ends := strings.HasPrefix(pattern, "%")
	trimmed := strings.Trim(pattern, "%")
	switch {
	case starts && ends:
		return trimmed, matchContains
	case starts:
		return trimmed, matchStartsWith
	case ends:
		return trimmed, matchEndsWith
	default:
		return trimmed, matchEquals
	}
}

func (m nameMatching) matches(name, needle string) bool {
	switch m {
	case matchStartsWith:
		return strings.HasPrefix(name, needle)
	case matchEndsWith:
		return strings.HasSuffix(name, needle)
	case matchContains:
		return strings.Contains(name, needle)
	default:
		return name == needle
	}
}

func (m nameMatching) noMatchMessage(needle string) string {
	switch m {
	case matchStartsWith:
		return fmt.Sprintf("No player names begin with %s", needle)
	case matchEndsWith:
		return fmt.Sprintf("No player names end with %s", needle)
	case matchContains:
		return fmt.Sprintf("No player names contain %s", needle)
	default:
		return fmt.Sprintf("No players with name %s found", needle)
	}
}

func (s *Server) kickAllMatching(id game.PlayerId, pattern string, banAddr bool) {
	admin, ok := s.CheckAdmin(id)
	if !ok {
		return
	}
	if pattern == "" {
		return
	}
	needle, mode := parseNamePattern(pattern)

	type match struct {
		id     game.PlayerId
		player *Player
	}
	var matches []match
	s.Players(func(pid game.PlayerId, p *Player) bool {
		if mode.matches(p.Name, needle) {
			matches = append(matches, match{pid, p})
		}
		return true
	})
	if len(matches) == 0 {
		s.AddDirectedServerChatMessage(mode.noMatchMessage(needle), id)
		return
	}
	for _, m := range matches {
		if m.id == id {
			if banAddr {
				s.AddDirectedServerChatMessage("You cannot ban yourself", id)
			} else {
				s.AddDirectedServerChatMessage("You cannot kick yourself", id)
			}
			continue
		}
		s.kick(id, admin.Name, m.id, m.player, banAddr)
	}
}

func (s *Server) clearBans(id game.PlayerId) {
	admin, ok := s.CheckAdmin(id)
	if !ok {
		return
	}
	s.bans.ClearAll()
	s.AddServerChatMessage(fmt.Sprintf("All bans cleared by %s", admin.Name))
}

func (s *Server) setReplayMode(id game.PlayerId, arg string) {
	admin, ok := s.CheckAdmin(id)
	if !ok {
		return
	}
	switch arg {
	case "on":
		if s.replayMode == ReplayOn {
			return
		}
		s.replayMode = ReplayOn
		s.AddServerChatMessage(fmt.Sprintf("Recording enabled by %s", admin.Name))
	case "standby":
		if s.replayMode == ReplayStandby {
			return
		}
		s.saveRecording()
		s.resetRecording()
		s.replayMode = ReplayStandby
		s.AddServerChatMessage(fmt.Sprintf("Recording on standby, enabled by %s", admin.Name))
	case "off":
		if s.replayMode == ReplayOff {
			return
		}
		s.saveRecording()
		s.resetRecording()
		s.replayMode = ReplayOff
		s.AddServerChatMessage(fmt.Sprintf("Recording disabled by %s", admin.Name))
	}
}

func (s *Server) restartServer(id game.PlayerId) {
	admin, ok := s.CheckAdmin(id)
	if !ok {
		return
	}
	if s.config.ServerService == "" {
		s.AddDirectedServerChatMessage("Server restart is not configured", id)
		return
	}
	s.AddServerChatMessage("Restarting server")
	s.log.WithField("admin", admin.Name).Warn("Server restart requested")
	service := s.config.ServerService
	log := s.log
	go func() {
		if err := exec.Command("systemctl", "restart", service).Run(); err != nil {
			log.WithError(err).WithField("service", service).Error("Could not restart service")
		}
	}()
}

func (s *Server) setHand(id game.PlayerId, hand game.Hand) {
	player := s.Player(id)
	if player == nil {
		return
	}
	player.Hand = hand
	if player.Skater != nil {
		if s.Scoreboard.Period != 0 {
			s.AddDirectedServerChatMessage("Stick hand will change after next intermission", id)
			return
		}
		player.Skater.Hand = hand
	}
}

func (s *Server) listPlayers(id game.PlayerId, first game.PlayerIndex) {
	shown := 0
	s.Players(func(pid game.PlayerId, p *Player) bool {
		if pid.Index < first {
			return true
		}
		s.AddDirectedServerChatMessage(fmt.Sprintf("%d: %s", pid.Index, p.Name), id)
		shown++
		return shown < 5
	})
}

// playerSearch finds up to five players whose name contains the needle,
// case-insensitively.
func (s *Server) playerSearch(needle string) []game.PlayerId {
	needle = strings.ToLower(needle)
	var found []game.PlayerId
	s.Players(func(pid game.PlayerId, p *Player) bool {
		if strings.Contains(strings.ToLower(p.Name), needle) {
			found = append(found, pid)
		}
		return len(found) < 5
	})
	return found
}

func (s *Server) searchPlayers(id game.PlayerId, needle string) {
	if needle == "" {
		return
	}
	found := s.playerSearch(needle)
	if len(found) == 0 {
		s.AddDirectedServerChatMessage("No matches found", id)
		return
	}
	for _, pid := range found {
		if p := s.Player(pid); p != nil {
			s.AddDirectedServerChatMessage(fmt.Sprintf("%d: %s", pid.Index, p.Name), id)
		}
	}
}

// resolveByName runs an index-based command against a name search, asking
// the player to disambiguate when several names match.
func (s *Server) resolveByName(id game.PlayerId, needle, command string, apply func(game.PlayerId, game.PlayerIndex)) {
	if needle == "" {
		return
	}
	found := s.playerSearch(needle)
	switch len(found) {
	case 0:
		s.AddDirectedServerChatMessage("No matches found", id)
	case 1:
		apply(id, found[0].Index)
	default:
		s.AddDirectedServerChatMessage(fmt.Sprintf("Multiple matches found, use /%s X", command), id)
		for _, pid := range found {
			if p := s.Player(pid); p != nil {
				s.AddDirectedServerChatMessage(fmt.Sprintf("%d: %s", pid.Index, p.Name), id)
			}
		}
	}
}

func (s *Server) pingPlayer(id game.PlayerId, index game.PlayerIndex) {
	_, target, ok := s.PlayerAtIndex(index)
	if !ok {
		s.AddDirectedServerChatMessage("No player with this ID exists", id)
		return
	}
	if target.net == nil {
		s.AddDirectedServerChatMessage(fmt.Sprintf("%s is a bot", target.Name), id)
		return
	}
	data, ok := target.net.pingData()
	if !ok {
		s.AddDirectedServerChatMessage(fmt.Sprintf("%s has no ping measurements", target.Name), id)
		return
	}
	s.AddDirectedServerChatMessage(fmt.Sprintf("%s ping: avg %.0f ms", target.Name, data.Avg*1000), id)
	s.AddDirectedServerChatMessage(fmt.Sprintf("min %.0f ms, max %.0f ms, std.dev %.1f",
		data.Min*1000, data.Max*1000, data.DeviationAvg*1000), id)
}

func (s *Server) viewPlayer(id game.PlayerId, index game.PlayerIndex) {
	player := s.Player(id)
	if player == nil || player.net == nil {
		return
	}
	if player.Skater != nil {
		s.AddDirectedServerChatMessage("You must be a spectator to change view", id)
		return
	}
	_, target, ok := s.PlayerAtIndex(index)
	if !ok {
		s.AddDirectedServerChatMessage("No player with this ID exists", id)
		return
	}
	player.net.viewPlayerIdx = index
	if index == id.Index {
		s.AddDirectedServerChatMessage("View has been restored", id)
	} else {
		s.AddDirectedServerChatMessage(fmt.Sprintf("You are now viewing %s", target.Name), id)
	}
}

func (s *Server) restoreView(id game.PlayerId) {
	player := s.Player(id)
	if player == nil || player.net == nil {
		return
	}
	if player.net.viewPlayerIdx != id.Index {
		player.net.viewPlayerIdx = id.Index
		s.AddDirectedServerChatMessage("View has been restored", id)
	}
}
