package api

import (
	"fmt"
	"net"
	"strconv"

	"github.com/dep2p/go-dapp/config"
	"github.com/dep2p/go-dapp/pkg/types"
)

// Listen 打开本节点的监听器并返回本节点地址
//
// Node.Port 非零时只尝试该端口，否则在发现端口段内选择第一个可用端口。
func Listen(cfg *config.Config) (net.Listener, types.Endpoint, error) {
	host := cfg.Node.Host

	ports := []int{cfg.Node.Port}
	if cfg.Node.Port == 0 {
		ports = ports[:0]
		for p := cfg.Discovery.StartPort; p <= cfg.Discovery.EndPort; p++ {
			ports = append(ports, p)
		}
	}

	var lastErr error
	for _, port := range ports {
		ln, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
		if err != nil {
			lastErr = err
			log.Debug("port unavailable", "port", port, "error", err)
			continue
		}
		self := types.EndpointFor(host, ln.Addr().(*net.TCPAddr).Port)
		return ln, self, nil
	}

	if cfg.Node.Port != 0 {
		return nil, "", fmt.Errorf("listen on port %d: %w", cfg.Node.Port, lastErr)
	}
	return nil, "", fmt.Errorf("no free port in range [%d, %d]: %w",
		cfg.Discovery.StartPort, cfg.Discovery.EndPort, lastErr)
}
