package physics

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/crease-gg/crease/game"
)

func puckDetection(puck *game.Puck, puckIndex int, oldPuckPos mgl32.Vec3, rink *game.Rink, events *[]Event) {
	puckPos := puck.Body.Pos
	checkPuckLines(puckIndex, puckPos, oldPuckPos, puck.Radius, game.TeamRed, rink, events)
	checkPuckLines(puckIndex, puckPos, oldPuckPos, puck.Radius, game.TeamBlue, rink, events)
	checkPuckNet(puckIndex, puckPos, oldPuckPos, &rink.RedNet, game.TeamRed, events)
	checkPuckNet(puckIndex, puckPos, oldPuckPos, &rink.BlueNet, game.TeamBlue, events)
}

func checkPuckLines(puckIndex int, puckPos, oldPuckPos mgl32.Vec3, puckRadius float32, team game.Team, rink *game.Rink, events *[]Event) {
	var ownSide, otherSide game.SideOfLine
	var defensiveLine, offensiveLine *game.RinkLine
	if team == game.TeamRed {
		ownSide, otherSide = game.SideRed, game.SideBlue
		defensiveLine, offensiveLine = &rink.RedZoneBlueLine, &rink.BlueZoneBlueLine
	} else {
		ownSide, otherSide = game.SideBlue, game.SideRed
		defensiveLine, offensiveLine = &rink.BlueZoneBlueLine, &rink.RedZoneBlueLine
	}

	oldPosition := defensiveLine.SideOfLine(oldPuckPos, puckRadius)
	position := defensiveLine.SideOfLine(puckPos, puckRadius)
	if oldPosition == ownSide && position != ownSide {
		*events = append(*events, Event{Kind: EventPuckReachedDefensiveLine, Team: team, Puck: puckIndex})
	}
	if position == otherSide && oldPosition != otherSide {
		*events = append(*events, Event{Kind: EventPuckPassedDefensiveLine, Team: team, Puck: puckIndex})
	}

	oldPosition = rink.CenterLine.SideOfLine(oldPuckPos, puckRadius)
	position = rink.CenterLine.SideOfLine(puckPos, puckRadius)
	if oldPosition == ownSide && position != ownSide {
		*events = append(*events, Event{Kind: EventPuckReachedCenterLine, Team: team, Puck: puckIndex})
	}
	if position == otherSide && oldPosition != otherSide {
		*events = append(*events, Event{Kind: EventPuckPassedCenterLine, Team: team, Puck: puckIndex})
	}

	oldPosition = offensiveLine.SideOfLine(oldPuckPos, puckRadius)
	position = offensiveLine.SideOfLine(puckPos, puckRadius)
	if oldPosition == ownSide && position != ownSide {
		*events = append(*events, Event{Kind: EventPuckReachedOffensiveZone, Team: team, Puck: puckIndex})
	}
	if position == otherSide && oldPosition != otherSide {
		*events = append(*events, Event{Kind: EventPuckEnteredOffensiveZone, Team: team, Puck: puckIndex})
	}
}

func checkPuckNet(puckIndex int, puckPos, oldPuckPos mgl32.Vec3, net *game.Net, team game.Team, events *[]Event) {
	if net.LeftPost.Sub(puckPos).Dot(net.Normal) >= 0.0 &&
		net.LeftPost.Sub(oldPuckPos).Dot(net.Normal) < 0.0 {
		if net.LeftPost.Sub(puckPos).Dot(net.LeftPostInside) < 0.0 &&
			net.RightPost.Sub(puckPos).Dot(net.RightPostInside) < 0.0 &&
			puckPos.Y() < 1.0 {
			*events = append(*events, Event{Kind: EventPuckEnteredNet, Team: team, Puck: puckIndex})
		} else {
			*events = append(*events, Event{Kind: EventPuckPassedGoalLine, Team: team, Puck: puckIndex})
		}
	}
}
