// Command lstypec lists the USB Type-C connectors of the platform and
// everything the platform knows about them: capabilities, connector
// status, cable properties, alternate modes, power data objects and
// discovered partner and cable identities.
//
// Queries the platform cannot answer are skipped silently; anything
// else aborts with a diagnostic. Run with -trace to capture the raw
// UCSI exchanges to a CBOR trace file, which can later be replayed
// with the fixture backend.
//
// Usage:
//
//	lstypec [flags]
//
// Flags:
//
//	-backend string   Backend: auto, sysfs, ucsi_debugfs, fixture (default "auto")
//	-fixture string   Fixture YAML file (implies -backend fixture)
//	-trace string     Write a CBOR protocol trace to this file
//	-log-level string Log level: debug, info, warn, error (default "info")
//	-identity         Also query partner and cable Discover Identity
//
// Examples:
//
//	# List connectors through the first available backend
//	lstypec
//
//	# Capture a trace while querying through debugfs (needs root)
//	sudo lstypec -backend ucsi_debugfs -trace laptop.tlog
//
//	# Replay a captured platform
//	lstypec -fixture laptop.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/usb-typec/typec-go/pkg/errdefs"
	"github.com/usb-typec/typec-go/pkg/log"
	"github.com/usb-typec/typec-go/pkg/pd"
	"github.com/usb-typec/typec-go/pkg/typec"
)

func main() {
	backendFlag := flag.String("backend", "auto", "Backend: auto, sysfs, ucsi_debugfs, fixture")
	fixtureFlag := flag.String("fixture", "", "Fixture YAML file (implies -backend fixture)")
	traceFlag := flag.String("trace", "", "Write a CBOR protocol trace to this file")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	identityFlag := flag.Bool("identity", false, "Also query partner and cable Discover Identity")
	flag.Parse()

	logger := newLogger(*logLevel)

	kind, err := parseBackend(*backendFlag)
	if err != nil {
		logger.Error("invalid backend", "error", err)
		os.Exit(2)
	}
	if *fixtureFlag != "" {
		kind = typec.BackendFixture
	}

	opts := []typec.Option{}
	if *fixtureFlag != "" {
		opts = append(opts, typec.WithFixtureFile(*fixtureFlag))
	}

	var traceLogger *log.FileLogger
	if *traceFlag != "" {
		traceLogger, err = log.NewFileLogger(*traceFlag)
		if err != nil {
			logger.Error("cannot open trace file", "path", *traceFlag, "error", err)
			os.Exit(1)
		}
		defer traceLogger.Close()
		opts = append(opts, typec.WithLogger(log.NewMultiLogger(
			traceLogger,
			log.NewSlogAdapter(logger),
		)))
	} else {
		opts = append(opts, typec.WithLogger(log.NewSlogAdapter(logger)))
	}

	ctx := context.Background()
	session, err := typec.New(ctx, kind, opts...)
	if err != nil {
		logger.Error("cannot open session", "backend", kind.String(), "error", err)
		os.Exit(1)
	}
	defer session.Close()

	if err := run(ctx, session, *identityFlag); err != nil {
		logger.Error("query failed", "error", err)
		os.Exit(1)
	}
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}

func parseBackend(name string) (typec.BackendKind, error) {
	switch name {
	case "auto":
		return typec.BackendAuto, nil
	case "sysfs":
		return typec.BackendSysfs, nil
	case "ucsi_debugfs":
		return typec.BackendUCSIDebugfs, nil
	case "fixture":
		return typec.BackendFixture, nil
	default:
		return 0, fmt.Errorf("unknown backend %q", name)
	}
}

// run sweeps every connector. Unsupported queries are skipped; any
// other failure aborts the sweep.
func run(ctx context.Context, s *typec.Session, withIdentity bool) error {
	caps, err := s.Capabilities(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("platform (%s backend)\n", s.BackendName())
	fmt.Printf("  connectors:  %d\n", caps.NumConnectors)
	fmt.Printf("  alt modes:   %d\n", caps.NumAltModes)
	printRevision("  usb pd:      ", caps.PDVersion)
	printRevision("  usb type-c:  ", caps.TypeCVersion)
	printRevision("  usb bc:      ", caps.BCVersion)

	for connector := uint8(0); connector < caps.NumConnectors; connector++ {
		fmt.Printf("\nconnector %d\n", connector)
		if err := dumpConnector(ctx, s, connector, withIdentity); err != nil {
			return fmt.Errorf("connector %d: %w", connector, err)
		}
	}
	return nil
}

func dumpConnector(ctx context.Context, s *typec.Session, connector uint8, withIdentity bool) error {
	if caps, err := s.ConnectorCapabilities(ctx, connector); err == nil {
		fmt.Printf("  operation mode: %s\n", caps.OperationMode)
	} else if errdefs.IsFatal(err) {
		return err
	}

	if status, err := s.ConnectorStatus(ctx, connector); err == nil {
		fmt.Printf("  connected:      %v\n", status.Connected)
		if status.Connected {
			fmt.Printf("  power mode:     %s\n", status.PowerOperationMode)
			fmt.Printf("  partner:        %s\n", status.PartnerType)
		}
		if status.PowerReadingReady {
			fmt.Printf("  vbus:           %dmV %dmA\n",
				uint32(status.VoltageReading)*uint32(status.VoltageScale)*5,
				uint32(status.AverageCurrent)*uint32(status.CurrentScale)*5)
		}
	} else if errdefs.IsFatal(err) {
		return err
	}

	if prop, err := s.CableProperties(ctx, connector); err == nil {
		fmt.Printf("  cable:          %s plug, %s\n", prop.PlugEndType, prop.CableType)
	} else if errdefs.IsFatal(err) {
		return err
	}

	recipients := []pd.MessageRecipient{
		pd.RecipientConnector, pd.RecipientSOP, pd.RecipientSOPPrime,
	}
	for _, recipient := range recipients {
		modes, err := s.AlternateModes(ctx, recipient, connector)
		if err != nil {
			if errdefs.IsFatal(err) {
				return err
			}
			continue
		}
		for _, mode := range modes {
			fmt.Printf("  alt mode (%s): svid %04x vdo %08x\n", mode.Recipient, mode.SVID, mode.VDO)
		}
	}

	for _, q := range []struct {
		label   string
		partner bool
		role    pd.PowerRole
	}{
		{"source pdos", false, pd.RoleSource},
		{"sink pdos", false, pd.RoleSink},
		{"partner source pdos", true, pd.RoleSource},
		{"partner sink pdos", true, pd.RoleSink},
	} {
		pdos, err := s.PDOs(ctx, connector, typec.PDORequest{Partner: q.partner, Role: q.role})
		if err != nil {
			if errdefs.IsFatal(err) {
				return err
			}
			continue
		}
		for i, p := range pdos {
			fmt.Printf("  %s[%d]: %s\n", q.label, i, formatPDO(p))
		}
	}

	if withIdentity {
		for _, recipient := range []pd.MessageRecipient{pd.RecipientSOP, pd.RecipientSOPPrime} {
			identity, err := s.DiscoverIdentity(ctx, connector, recipient)
			if err != nil {
				if errdefs.IsFatal(err) {
					return err
				}
				continue
			}
			fmt.Printf("  identity (%s): vid %04x pid %04x xid %08x\n",
				recipient, identity.IDHeader.VendorID, identity.Product.ProductID, identity.CertStat.XID)
		}
	}
	return nil
}

func printRevision(label string, rev pd.BCD) {
	if rev == 0 {
		return
	}
	fmt.Printf("%s%s\n", label, rev)
}

func formatPDO(p pd.PDO) string {
	switch v := p.(type) {
	case *pd.FixedSupply:
		return fmt.Sprintf("fixed %dmV %dmA", v.VoltageMV, v.CurrentMA)
	case *pd.BatterySupply:
		return fmt.Sprintf("battery %d-%dmV %dmW", v.MinVoltageMV, v.MaxVoltageMV, v.PowerMW)
	case *pd.VariableSupply:
		return fmt.Sprintf("variable %d-%dmV %dmA", v.MinVoltageMV, v.MaxVoltageMV, v.CurrentMA)
	case *pd.ProgrammableSupply:
		return fmt.Sprintf("pps %d-%dmV %dmA", v.MinVoltageMV, v.MaxVoltageMV, v.MaxCurrentMA)
	default:
		return fmt.Sprintf("%s %08x", p.Kind(), p.Word())
	}
}
