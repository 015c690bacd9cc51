package server

import (
	"fmt"

	"github.com/crease-gg/crease/game"
	"github.com/crease-gg/crease/protocol"
)

// addGlobalMessage queues a reliable message for every connected client.
// Persistent messages are replayed to future joiners; recording messages
// enter the game recording stream.
func (s *Server) addGlobalMessage(msg protocol.ServerMessage, persistent, inRecording bool) {
	if persistent {
		s.persistentMessages = append(s.persistentMessages, msg)
	}
	if inRecording {
		s.recordingMessages = append(s.recordingMessages, msg)
	}
	for i := range s.players {
		p := s.players[i].player
		if p != nil && p.net != nil {
			p.net.messages = append(p.net.messages, msg)
		}
	}
}

// addDirectedMessage queues a reliable message for a single client.
func (s *Server) addDirectedMessage(msg protocol.ServerMessage, id game.PlayerId) {
	player := s.Player(id)
	if player == nil || player.net == nil {
		return
	}
	player.net.messages = append(player.net.messages, msg)
}

// AddServerChatMessage broadcasts a chat line from the server itself.
func (s *Server) AddServerChatMessage(message string) {
	s.addGlobalMessage(protocol.ChatMessage{
		PlayerIndex: -1,
		Message:     message,
	}, false, true)
}

// AddDirectedServerChatMessage sends a server chat line to one player.
func (s *Server) AddDirectedServerChatMessage(message string, id game.PlayerId) {
	s.addDirectedMessage(protocol.ChatMessage{
		PlayerIndex: -1,
		Message:     message,
	}, id)
}

// AddUserChatMessage broadcasts a chat line attributed to a player.
func (s *Server) AddUserChatMessage(message string, id game.PlayerId) {
	s.addGlobalMessage(protocol.ChatMessage{
		PlayerIndex: id.Index,
		Message:     message,
	}, false, true)
}

// addDirectedUserChatMessage echoes a chat line, attributed to its sender,
// to a single receiver.
func (s *Server) addDirectedUserChatMessage(message string, sender game.PlayerIndex, receiver game.PlayerId) {
	s.addDirectedMessage(protocol.ChatMessage{
		PlayerIndex: sender,
		Message:     message,
	}, receiver)
}

// AddGoalMessage announces a goal. Pass negative indices when there is no
// credited scorer or assist.
func (s *Server) AddGoalMessage(team game.Team, scorer, assist game.PlayerIndex) {
	s.addGlobalMessage(protocol.GoalMessage{
		Team:              team,
		GoalPlayerIndex:   scorer,
		AssistPlayerIndex: assist,
	}, true, true)
}

// addUserTeamMessage sends a chat line only to the sender's teammates. The
// sender's roster name is temporarily tagged with the team so receiving
// clients render the line distinctly, then restored.
func (s *Server) addUserTeamMessage(message string, sender game.PlayerId) {
	player := s.Player(sender)
	if player == nil || player.Skater == nil {
		return
	}
	team := player.Team
	tagged := fmt.Sprintf("[%s] %s", team, player.Name)

	taggedUpdate := protocol.PlayerUpdateMessage{
		PlayerIndex: sender.Index,
		InServer:    true,
		PlayerName:  tagged,
		ObjectIndex: player.ObjectIndex,
		Team:        team,
	}
	chat := protocol.ChatMessage{
		PlayerIndex: sender.Index,
		Message:     message,
	}
	restore := taggedUpdate
	restore.PlayerName = player.Name

	s.Players(func(id game.PlayerId, p *Player) bool {
		if p.net != nil && p.Skater != nil && p.Team == team {
			p.net.messages = append(p.net.messages, taggedUpdate, chat, restore)
		}
		return true
	})
}
