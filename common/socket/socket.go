// Copyright 2025 The packetd Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package socket

import (
	"fmt"
	"net"
)

// Version IP 版本 v4/v6
type Version uint8

const (
	V4 Version = iota
	V6
)

// IPV 基于 net.IP 做了一层封装，记录了 IP Bytes 以及协议版本信息。
type IPV struct {
	IP      [net.IPv6len]byte
	Version Version
}

// ToIPV4 将 net.IP 转换为 IPV4 版本
func ToIPV4(ip net.IP) IPV {
	var dst [net.IPv6len]byte
	copy(dst[:], ip[:])
	return IPV{IP: dst, Version: V4}
}

// ToIPV6 将 net.IP 转换为 IPV6 版本
func ToIPV6(ip net.IP) IPV {
	var dst [net.IPv6len]byte
	copy(dst[:], ip[:])
	return IPV{IP: dst, Version: V6}
}

// NetIP 将 IPV 转换为 net.IP
func (ipv IPV) NetIP() net.IP {
	if ipv.Version == V4 {
		return ipv.IP[:net.IPv4len]
	}
	return ipv.IP[:]
}

func (ipv IPV) String() string {
	return ipv.NetIP().String()
}

// FromNetAddr builds an IPV+Port pair from a net.Addr returned by a
// listener's Accept. Only TCP addresses are expected on the accept path.
func FromNetAddr(addr net.Addr) (IPV, Port) {
	tcpAddr, ok := addr.(*net.TCPAddr)
	if !ok {
		return IPV{}, 0
	}
	if tcpAddr.IP.To4() != nil {
		return ToIPV4(tcpAddr.IP), Port(tcpAddr.Port)
	}
	return ToIPV6(tcpAddr.IP), Port(tcpAddr.Port)
}

type Port uint16

// Endpoint identifies one side of an accepted connection: its address and
// port.
type Endpoint struct {
	IP   IPV
	Port Port
}

func (e Endpoint) String() string {
	return fmt.Sprintf("%s:%d", e.IP.String(), e.Port)
}

// Peer identifies an accepted connection by its local and remote
// endpoints: a stable identity for idle-connection bookkeeping and
// logging, not packet-direction tracking.
type Peer struct {
	Local  Endpoint
	Remote Endpoint
}

func (p Peer) String() string {
	return fmt.Sprintf("%s->%s", p.Remote, p.Local)
}
