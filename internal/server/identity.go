package server

import (
	"fmt"
	"net"
	"strconv"
)

// Identity names one worker server in the registry. Identities are fixed at
// startup and never change for the life of the process.
type Identity struct {
	ID   int
	Host string
	Port int
}

// Address returns the host:port dial address.
func (i Identity) Address() string {
	return net.JoinHostPort(i.Host, strconv.Itoa(i.Port))
}

func (i Identity) String() string {
	return fmt.Sprintf("server %d (%s)", i.ID, i.Address())
}
