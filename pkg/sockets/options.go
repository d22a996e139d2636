package sockets

import "time"

func WithPingInterval(d time.Duration) func(*Conn) {
	return func(s *Conn) {
		s.pingInterval = d
	}
}

func WithPingMsg(msg []byte) func(*Conn) {
	return func(s *Conn) {
		s.pingMsg = msg
	}
}

func WithWriteTimeout(d time.Duration) func(*Conn) {
	return func(s *Conn) {
		s.writeTimeout = d
	}
}

// OnError is called once with the error that ended the connection.
func OnError(f func(error)) func(*Conn) {
	return func(s *Conn) {
		s.onError = f
	}
}
