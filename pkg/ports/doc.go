// Package ports computes which named ports on an item are free, used, or
// invalid to connect, and runs single-item port selection sessions.
//
// Every function here is a pure transformation over an item snapshot and a
// connection list passed in by the caller. Nothing is cached between calls,
// so availability always reflects exactly the connections supplied.
//
// # Availability
//
//	ps := ports.AvailablePorts(cord, conns, inventory.Female)
//	for _, p := range ps {
//	    if !p.Available {
//	        fmt.Println(p.Name, "->", p.ConnectedTo)
//	    }
//	}
//
// Ports are always returned in ascending index order (Female_1, Female_2, …).
//
// # Selection
//
// A [Selector] snapshots availability when it is opened and resolves one user
// choice to a port name. It never re-reads connections while open; callers
// that want fresh data close and re-open it.
package ports
