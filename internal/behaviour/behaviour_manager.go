package behaviour

// Frame carries the clock for one engine tick.
type Frame struct {
	Index   int
	Dt      float64 // seconds since the previous frame
	Elapsed float64 // seconds since the first frame
}

type Behaviour interface {
	Start()
	Update(f Frame)
	UpdateFixed(f Frame)
}

type BehaviourWrapper struct {
	Behaviour Behaviour
	started   bool
}

// BehaviourManager ticks behaviours in the order they were added.
type BehaviourManager struct {
	behaviours []BehaviourWrapper
}

var GlobalBehaviourManager = NewBehaviourManager()

func NewBehaviourManager() *BehaviourManager {
	return &BehaviourManager{}
}

func (m *BehaviourManager) Add(behaviour Behaviour) {
	m.behaviours = append(m.behaviours, BehaviourWrapper{Behaviour: behaviour, started: false})
}

func (m *BehaviourManager) Len() int {
	return len(m.behaviours)
}

func (m *BehaviourManager) start(i int) {
	if !m.behaviours[i].started {
		m.behaviours[i].Behaviour.Start()
		m.behaviours[i].started = true
	}
}

func (m *BehaviourManager) UpdateAll(f Frame) {
	for i := range m.behaviours {
		m.start(i)
		m.behaviours[i].Behaviour.Update(f)
	}
}

func (m *BehaviourManager) UpdateAllFixed(f Frame) {
	for i := range m.behaviours {
		m.start(i)
		m.behaviours[i].Behaviour.UpdateFixed(f)
	}
}
