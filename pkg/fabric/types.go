package fabric

import "slices"

// Endpoint identifies one end of a cable: a port on a fabric node.
type Endpoint struct {
	LID  int    `json:"lid" yaml:"lid"`
	Port int    `json:"port" yaml:"port"`
	GUID string `json:"guid,omitempty" yaml:"guid,omitempty"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

// Link is one physical cable. Local is the side that reported it.
// Speed is the aggregate rate in Gb/s (per-lane rate times lane count).
type Link struct {
	Local  Endpoint `json:"local" yaml:"local"`
	Remote Endpoint `json:"remote" yaml:"remote"`
	Speed  float64  `json:"speed" yaml:"speed"`
}

// Node is a switch or an endpoint, keyed by LID.
type Node struct {
	LID      int
	GUID     string
	Name     string
	IsSwitch bool

	// TotalPorts counts the distinct ports this node reported on, declared
	// in a section header, or holds a cable on. It never decreases.
	TotalPorts int

	// Ports maps a port number to the link plugged into it.
	Ports map[int]*Link

	reported map[int]struct{}
}

// UsedPorts returns the number of occupied ports.
func (n *Node) UsedPorts() int { return len(n.Ports) }

// FreePorts returns TotalPorts minus UsedPorts.
func (n *Node) FreePorts() int { return n.TotalPorts - len(n.Ports) }

// FreePortNumbers lists the reported ports without a cable, ascending.
func (n *Node) FreePortNumbers() []int {
	var free []int
	for p := range n.reported {
		if _, used := n.Ports[p]; !used {
			free = append(free, p)
		}
	}
	slices.Sort(free)
	return free
}

// Reported reports whether port is counted in TotalPorts.
func (n *Node) Reported(port int) bool {
	_, ok := n.reported[port]
	return ok
}

// HighestPort returns the largest port number counted in TotalPorts.
func (n *Node) HighestPort() int {
	high := 0
	for p := range n.reported {
		high = max(high, p)
	}
	return high
}

// Peer returns the endpoint of l opposite to the port (lid, port). A cable
// looped back into the same node is told apart by the port number.
func Peer(l *Link, lid, port int) Endpoint {
	if l.Local.LID == lid && l.Local.Port == port {
		return l.Remote
	}
	return l.Local
}
