package feed

// Lookup holds id-keyed indexes built once per snapshot. Unknown ids are
// absent, never errors; the feed occasionally references entities it does
// not publish.
type Lookup struct {
	teamByID     map[int]Team
	positionByID map[int]Position
	playerByID   map[int]Player
}

func NewLookup(s Snapshot) *Lookup {
	l := &Lookup{
		teamByID:     make(map[int]Team, len(s.Teams)),
		positionByID: make(map[int]Position, len(s.Positions)),
		playerByID:   make(map[int]Player, len(s.Players)),
	}
	for _, t := range s.Teams {
		l.teamByID[t.ID] = t
	}
	for _, p := range s.Positions {
		l.positionByID[p.ID] = p
	}
	for _, p := range s.Players {
		l.playerByID[p.ID] = p
	}
	return l
}

func (l *Lookup) TeamByID(id int) (Team, bool) {
	t, ok := l.teamByID[id]
	return t, ok
}

func (l *Lookup) TeamNameByID(id int) (string, bool) {
	t, ok := l.teamByID[id]
	return t.Name, ok
}

func (l *Lookup) TeamShortNameByID(id int) (string, bool) {
	t, ok := l.teamByID[id]
	return t.ShortName, ok
}

func (l *Lookup) PositionByID(id int) (Position, bool) {
	p, ok := l.positionByID[id]
	return p, ok
}

func (l *Lookup) PositionSingularNameByID(id int) (string, bool) {
	p, ok := l.positionByID[id]
	return p.SingularName, ok
}

func (l *Lookup) PositionPluralNameByID(id int) (string, bool) {
	p, ok := l.positionByID[id]
	return p.PluralName, ok
}

func (l *Lookup) PlayerByID(id int) (Player, bool) {
	p, ok := l.playerByID[id]
	return p, ok
}
