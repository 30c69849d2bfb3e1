// Command typecstatus is an interactive shell for poking at the
// platform's Type-C connectors. It keeps one session open and issues
// queries on demand, which makes it handy for watching status change
// while plugging and unplugging devices.
//
// Usage:
//
//	typecstatus [flags]
//
// Flags:
//
//	-backend string  Backend: auto, sysfs, ucsi_debugfs, fixture (default "auto")
//	-fixture string  Fixture YAML file (implies -backend fixture)
//
// Interactive Commands:
//
//	caps                      - Show platform capabilities
//	conn <n>                  - Show connector capabilities
//	status <n>                - Show connector status
//	cable <n>                 - Show cable properties
//	modes <n> [recipient]     - List alternate modes (conn, sop, sop', sop'')
//	pdos <n> [partner] [sink] - List power data objects
//	identity <n> [sop']       - Show Discover Identity response
//	refresh                   - Re-read platform capabilities
//	quit                      - Exit
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/usb-typec/typec-go/pkg/errdefs"
	"github.com/usb-typec/typec-go/pkg/pd"
	"github.com/usb-typec/typec-go/pkg/typec"
)

func main() {
	backendFlag := flag.String("backend", "auto", "Backend: auto, sysfs, ucsi_debugfs, fixture")
	fixtureFlag := flag.String("fixture", "", "Fixture YAML file (implies -backend fixture)")
	flag.Parse()

	kind := typec.BackendAuto
	switch *backendFlag {
	case "auto":
	case "sysfs":
		kind = typec.BackendSysfs
	case "ucsi_debugfs":
		kind = typec.BackendUCSIDebugfs
	case "fixture":
		kind = typec.BackendFixture
	default:
		fmt.Fprintf(os.Stderr, "unknown backend %q\n", *backendFlag)
		os.Exit(2)
	}

	var opts []typec.Option
	if *fixtureFlag != "" {
		kind = typec.BackendFixture
		opts = append(opts, typec.WithFixtureFile(*fixtureFlag))
	}

	ctx := context.Background()
	session, err := typec.New(ctx, kind, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot open session: %v\n", err)
		os.Exit(1)
	}
	defer session.Close()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "typec> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot create readline: %v\n", err)
		os.Exit(1)
	}
	defer rl.Close()

	shell := &shell{session: session, out: rl.Stdout()}
	fmt.Fprintf(shell.out, "connected via %s backend, type 'help' for commands\n", session.BackendName())

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			return
		}
		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}
		if input == "quit" || input == "exit" {
			return
		}
		if err := shell.dispatch(ctx, strings.Fields(input)); err != nil {
			fmt.Fprintf(shell.out, "error: %v\n", err)
		}
	}
}

type shell struct {
	session *typec.Session
	out     io.Writer
}

func (sh *shell) dispatch(ctx context.Context, args []string) error {
	switch args[0] {
	case "help":
		sh.printHelp()
		return nil
	case "caps":
		return sh.caps(ctx)
	case "refresh":
		return sh.session.Refresh(ctx)
	case "conn":
		return sh.withConnector(args, func(c uint8) error { return sh.conn(ctx, c) })
	case "status":
		return sh.withConnector(args, func(c uint8) error { return sh.status(ctx, c) })
	case "cable":
		return sh.withConnector(args, func(c uint8) error { return sh.cable(ctx, c) })
	case "modes":
		return sh.withConnector(args, func(c uint8) error { return sh.modes(ctx, c, args[2:]) })
	case "pdos":
		return sh.withConnector(args, func(c uint8) error { return sh.pdos(ctx, c, args[2:]) })
	case "identity":
		return sh.withConnector(args, func(c uint8) error { return sh.identity(ctx, c, args[2:]) })
	default:
		return fmt.Errorf("unknown command %q, type 'help'", args[0])
	}
}

func (sh *shell) printHelp() {
	fmt.Fprint(sh.out, `Commands:
  caps                      - Show platform capabilities
  conn <n>                  - Show connector capabilities
  status <n>                - Show connector status
  cable <n>                 - Show cable properties
  modes <n> [recipient]     - List alternate modes (conn, sop, sop', sop'')
  pdos <n> [partner] [sink] - List power data objects
  identity <n> [sop']       - Show Discover Identity response
  refresh                   - Re-read platform capabilities
  quit                      - Exit
`)
}

func (sh *shell) withConnector(args []string, fn func(uint8) error) error {
	if len(args) < 2 {
		return fmt.Errorf("%s needs a connector index", args[0])
	}
	n, err := strconv.ParseUint(args[1], 10, 7)
	if err != nil {
		return fmt.Errorf("bad connector index %q", args[1])
	}
	return fn(uint8(n))
}

func (sh *shell) caps(ctx context.Context) error {
	caps, err := sh.session.Capabilities(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(sh.out, "connectors %d, alt modes %d\n", caps.NumConnectors, caps.NumAltModes)
	if caps.PDVersion != 0 {
		fmt.Fprintf(sh.out, "usb pd %s", caps.PDVersion)
		if caps.TypeCVersion != 0 {
			fmt.Fprintf(sh.out, ", type-c %s", caps.TypeCVersion)
		}
		fmt.Fprintln(sh.out)
	}
	return nil
}

func (sh *shell) conn(ctx context.Context, connector uint8) error {
	caps, err := sh.session.ConnectorCapabilities(ctx, connector)
	if err != nil {
		return err
	}
	fmt.Fprintf(sh.out, "operation mode %s\n", caps.OperationMode)
	fmt.Fprintf(sh.out, "provider %v, consumer %v\n", caps.Provider, caps.Consumer)
	if caps.PartnerPDRevision != 0 {
		fmt.Fprintf(sh.out, "partner pd revision %d.x\n", caps.PartnerPDRevision)
	}
	return nil
}

func (sh *shell) status(ctx context.Context, connector uint8) error {
	status, err := sh.session.ConnectorStatus(ctx, connector)
	if err != nil {
		return err
	}
	fmt.Fprintf(sh.out, "connected %v\n", status.Connected)
	if status.Connected {
		fmt.Fprintf(sh.out, "power mode %s, partner %s\n", status.PowerOperationMode, status.PartnerType)
		if status.PDVersion != 0 {
			fmt.Fprintf(sh.out, "contract pd %s\n", status.PDVersion)
		}
	}
	if status.PowerReadingReady {
		fmt.Fprintf(sh.out, "vbus %dmV %dmA\n",
			uint32(status.VoltageReading)*uint32(status.VoltageScale)*5,
			uint32(status.AverageCurrent)*uint32(status.CurrentScale)*5)
	}
	return nil
}

func (sh *shell) cable(ctx context.Context, connector uint8) error {
	prop, err := sh.session.CableProperties(ctx, connector)
	if err != nil {
		return err
	}
	fmt.Fprintf(sh.out, "%s plug, %s cable\n", prop.PlugEndType, prop.CableType)
	if prop.SpeedMantissa != 0 {
		fmt.Fprintf(sh.out, "speed %s\n", prop.Speed())
	}
	if prop.CurrentCapability != 0 {
		fmt.Fprintf(sh.out, "current capability %dmA\n", uint32(prop.CurrentCapability)*50)
	}
	return nil
}

func parseRecipient(args []string, fallback pd.MessageRecipient) (pd.MessageRecipient, error) {
	if len(args) == 0 {
		return fallback, nil
	}
	switch args[0] {
	case "conn":
		return pd.RecipientConnector, nil
	case "sop":
		return pd.RecipientSOP, nil
	case "sop'":
		return pd.RecipientSOPPrime, nil
	case "sop''":
		return pd.RecipientSOPDoublePrime, nil
	default:
		return 0, fmt.Errorf("unknown recipient %q", args[0])
	}
}

func (sh *shell) modes(ctx context.Context, connector uint8, args []string) error {
	recipient, err := parseRecipient(args, pd.RecipientConnector)
	if err != nil {
		return err
	}
	modes, err := sh.session.AlternateModes(ctx, recipient, connector)
	if err != nil {
		return err
	}
	if len(modes) == 0 {
		fmt.Fprintf(sh.out, "no alternate modes for %s\n", recipient)
		return nil
	}
	for _, mode := range modes {
		fmt.Fprintf(sh.out, "[%d] svid %04x vdo %08x\n", mode.Index, mode.SVID, mode.VDO)
	}
	return nil
}

func (sh *shell) pdos(ctx context.Context, connector uint8, args []string) error {
	req := typec.PDORequest{Role: pd.RoleSource}
	for _, arg := range args {
		switch arg {
		case "partner":
			req.Partner = true
		case "sink":
			req.Role = pd.RoleSink
		case "source":
			req.Role = pd.RoleSource
		default:
			return fmt.Errorf("unknown pdos argument %q", arg)
		}
	}

	pdos, err := sh.session.PDOs(ctx, connector, req)
	if err != nil {
		if !errdefs.IsFatal(err) {
			fmt.Fprintln(sh.out, "not supported")
			return nil
		}
		return err
	}
	if len(pdos) == 0 {
		fmt.Fprintln(sh.out, "no pdos")
		return nil
	}
	for i, p := range pdos {
		fmt.Fprintf(sh.out, "[%d] %s: %s\n", i, p.Kind(), describePDO(p))
	}
	return nil
}

func describePDO(p pd.PDO) string {
	switch v := p.(type) {
	case *pd.FixedSupply:
		s := fmt.Sprintf("%dmV %dmA", v.VoltageMV, v.CurrentMA)
		if v.DualRolePower {
			s += " dual-role"
		}
		return s
	case *pd.BatterySupply:
		return fmt.Sprintf("%d-%dmV %dmW", v.MinVoltageMV, v.MaxVoltageMV, v.PowerMW)
	case *pd.VariableSupply:
		return fmt.Sprintf("%d-%dmV %dmA", v.MinVoltageMV, v.MaxVoltageMV, v.CurrentMA)
	case *pd.ProgrammableSupply:
		return fmt.Sprintf("%d-%dmV %dmA", v.MinVoltageMV, v.MaxVoltageMV, v.MaxCurrentMA)
	default:
		return fmt.Sprintf("%08x", p.Word())
	}
}

func (sh *shell) identity(ctx context.Context, connector uint8, args []string) error {
	recipient, err := parseRecipient(args, pd.RecipientSOP)
	if err != nil {
		return err
	}
	identity, err := sh.session.DiscoverIdentity(ctx, connector, recipient)
	if err != nil {
		if !errdefs.IsFatal(err) {
			fmt.Fprintf(sh.out, "no identity for %s\n", recipient)
			return nil
		}
		return err
	}
	fmt.Fprintf(sh.out, "vid %04x pid %04x device %s\n",
		identity.IDHeader.VendorID, identity.Product.ProductID, identity.Product.Device)
	fmt.Fprintf(sh.out, "xid %08x\n", identity.CertStat.XID)
	if recipient.CablePlug() {
		fmt.Fprintf(sh.out, "product type %s\n", identity.IDHeader.CableType())
	} else {
		fmt.Fprintf(sh.out, "product type %s\n", identity.IDHeader.UFPType())
	}
	return nil
}
