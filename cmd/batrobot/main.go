// Command batrobot wires configuration, the three serial byte
// channels, the safety gate, the capture/transmit coordinator, and the
// cross-correlation pipeline into a single run: emit one pulse, capture
// the stereo return, and print the resolved range and bearing.
package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/MuroAkira/Batrobot/internal/arminterlock"
	"github.com/MuroAkira/Batrobot/internal/config"
	"github.com/MuroAkira/Batrobot/internal/coordinator"
	"github.com/MuroAkira/Batrobot/internal/ctrlport"
	"github.com/MuroAkira/Batrobot/internal/decode"
	"github.com/MuroAkira/Batrobot/internal/devscan"
	"github.com/MuroAkira/Batrobot/internal/discovery"
	"github.com/MuroAkira/Batrobot/internal/dump"
	"github.com/MuroAkira/Batrobot/internal/geofix"
	"github.com/MuroAkira/Batrobot/internal/logging"
	"github.com/MuroAkira/Batrobot/internal/reference"
	"github.com/MuroAkira/Batrobot/internal/resolver"
	"github.com/MuroAkira/Batrobot/internal/rigctl"
	"github.com/MuroAkira/Batrobot/internal/safety"
	"github.com/MuroAkira/Batrobot/internal/serialport"
	"github.com/MuroAkira/Batrobot/internal/soundcapture"
	"github.com/MuroAkira/Batrobot/internal/txsink"
	"github.com/MuroAkira/Batrobot/internal/waveform"
	"github.com/MuroAkira/Batrobot/internal/xcorr"
)

func main() {
	configPath := pflag.StringP("config-file", "c", "batrobot.yaml", "Configuration file path.")
	dryRun := pflag.BoolP("dry-run", "n", false, "Skip the hardware arm interlock and use a no-op transmit target.")
	forceDump := pflag.BoolP("dump", "D", false, "Force-enable artifact dumping; uses ./dumps when config's dump_dir is empty.")
	freqKHz := pflag.IntP("freq-khz", "f", 40, "CF carrier frequency in kHz, used when --fm is not given.")
	dutyPercent := pflag.IntP("duty", "d", 10, "Bitstream duty cycle percent.")
	pulseBytes := pflag.IntP("pulse-bytes", "b", 1000, "Length of the emitted bitstream in bytes.")
	fmChirp := pflag.BoolP("fm", "m", false, "Emit an exponential chirp instead of a constant-frequency carrier.")
	fStart := pflag.Float64P("f-start-hz", "s", 95_000, "Chirp start frequency, Hz (--fm only).")
	fEnd := pflag.Float64P("f-end-hz", "e", 50_000, "Chirp end frequency, Hz (--fm only).")
	durationMs := pflag.Float64P("duration-ms", "u", 8, "Chirp duration, milliseconds (--fm only).")
	gain := pflag.IntP("gain", "g", -1, "Receiver gain percent pushed over the control port before the run; -1 leaves it alone.")
	soundcard := pflag.BoolP("soundcard", "S", false, "Capture through the default sound device instead of the serial ADC (bench mode; fs_hz must be a sound-card rate).")
	listPorts := pflag.BoolP("list-ports", "L", false, "List serial devices visible through udev and exit.")
	usbVendor := pflag.StringP("usb-vendor", "V", "", "Restrict --list-ports to this USB vendor ID.")
	help := pflag.BoolP("help", "h", false, "Display help text.")
	pflag.Parse()

	if *help {
		pflag.Usage()
		return
	}

	logger := logging.New(os.Stderr, "batrobot", log.InfoLevel)

	if *listPorts {
		ports, err := devscan.List()
		if err != nil {
			logger.Error("udev enumeration failed", "err", err)
			os.Exit(1)
		}
		for _, p := range devscan.Filter(ports, *usbVendor) {
			fmt.Printf("%s vendor=%s model=%s serial=%s\n", p.Devnode, p.VendorID, p.ModelID, p.Serial)
		}
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}

	if *forceDump && cfg.DumpDir == "" {
		cfg.DumpDir = "dumps"
	}

	spec := buildSpec(*fmChirp, *freqKHz, *dutyPercent, *pulseBytes, *fStart, *fEnd, *durationMs/1000)

	bits := make([]byte, *pulseBytes)
	if n := waveform.Generate(bits, spec); n == 0 {
		logger.Error("waveform parameters rejected")
		os.Exit(1)
	}

	dest := cfg.PulsePath
	if *dryRun {
		dest = cfg.TestTxPrefix + "dryrun"
	}

	var adc *serialport.Port
	if !*soundcard {
		adc, err = serialport.Open(cfg.AdcPath, cfg.Baud)
		if err != nil {
			logger.Error("failed to open ADC port", "err", err)
			os.Exit(1)
		}
		defer adc.Close()
	}

	var pulseWriter txsink.Writer
	if *dryRun {
		pulseWriter = discardWriter{}
	} else {
		pulse, err := serialport.Open(cfg.PulsePath, cfg.Baud)
		if err != nil {
			logger.Error("failed to open pulse port", "err", err)
			os.Exit(1)
		}
		defer pulse.Close()
		pulseWriter = pulse
	}

	if !*dryRun && cfg.CtrlPath != "" {
		if err := preflight(logger, cfg, *gain); err != nil {
			logger.Error("control-port preflight failed", "err", err)
			os.Exit(1)
		}
	}

	var interlock txsink.Interlock = arminterlock.AlwaysArmed{}
	if !*dryRun && cfg.ArmGpioChip != "" {
		gpio, err := arminterlock.Open(cfg.ArmGpioChip, cfg.ArmGpioLine)
		if err != nil {
			logger.Error("failed to open arm interlock", "err", err)
			os.Exit(1)
		}
		defer gpio.Close()
		interlock = gpio
	}

	if cfg.DnsSdName != "" {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		handle, err := discovery.Advertise(ctx, cfg.DnsSdName, discovery.DefaultPort)
		if err != nil {
			logger.Warn("mDNS advertisement failed", "err", err)
		} else {
			defer handle.Close()
		}
	}

	policy := safety.Policy{
		DutyMaxPercent: cfg.DutyMaxPercent,
		MaxRunBits:     cfg.MaxRunBits,
		MaxTxBytes:     cfg.MaxTxBytes,
		AllowedTxPaths: cfg.AllowedTxPaths,
		TestTxPrefix:   cfg.TestTxPrefix,
	}

	writer := dump.New(cfg.DumpDir, time.Now)
	if err := writer.Bitstream(bits); err != nil {
		logger.Warn("failed to dump bitstream", "err", err)
	}

	var l, r []float32
	var n int
	if *soundcard {
		// Bench mode keeps the coordinator's ordering by hand: spawn
		// the sound capture, transmit, then join.
		type soundResult struct {
			l, r []float32
			err  error
		}
		resCh := make(chan soundResult, 1)
		go func() {
			sl, sr, err := soundcapture.Capture(cfg.XcorrN, cfg.FsHz)
			resCh <- soundResult{l: sl, r: sr, err: err}
		}()
		txErr := txsink.Transmit(policy, interlock, dest, pulseWriter, bits)
		res := <-resCh
		if txErr != nil {
			logger.Error("transmit failed", "err", txErr)
			os.Exit(1)
		}
		if res.err != nil {
			logger.Error("sound capture failed", "err", res.err)
			os.Exit(1)
		}
		l, r = res.l, res.r
		n = len(l)
	} else {
		captureBuf := make([]byte, cfg.AdcReadBytes)
		timeouts := coordinator.Timeouts{
			Start: time.Duration(cfg.AdcStartTimeoutMs) * time.Millisecond,
			Idle:  time.Duration(cfg.AdcIdleTimeoutMs) * time.Millisecond,
		}

		state, result, err := coordinator.Run(adc, captureBuf, timeouts, policy, interlock, dest, pulseWriter, bits)
		logging.StateTransition(logger, "idle", state.String())
		if err != nil {
			logger.Error("capture/transmit cycle failed", "state", state, "err", err)
			os.Exit(1)
		}

		if err := writer.Capture(captureBuf[:result.N]); err != nil {
			logger.Warn("failed to dump capture", "err", err)
		}

		n = result.N / 4
		if n > cfg.XcorrN {
			n = cfg.XcorrN
		}
		l, r = decode.Decode(captureBuf[:result.N], cfg.XcorrN)
	}

	refTime := make([]float32, cfg.XcorrN)
	if spec.Mode == waveform.FM {
		reference.FM(refTime, spec.FStartHz, spec.FEndHz, spec.DurationS, cfg.FsHz)
	} else {
		reference.CF(refTime, float64(spec.FreqKHz)*1000, cfg.FsHz)
	}

	xc, err := xcorr.NewContext(cfg.XcorrN, cfg.FsHz, cfg.HpfHz)
	if err != nil {
		logger.Error("failed to build xcorr context", "err", err)
		os.Exit(1)
	}
	if err := xc.SetReference(refTime); err != nil {
		logger.Error("failed to set xcorr reference", "err", err)
		os.Exit(1)
	}

	envL, err := xc.RunEnvelope(l)
	if err != nil {
		logger.Error("failed to compute left envelope", "err", err)
		os.Exit(1)
	}
	envR, err := xc.RunEnvelope(r)
	if err != nil {
		logger.Error("failed to compute right envelope", "err", err)
		os.Exit(1)
	}
	if err := writer.Envelope(envL); err != nil {
		logger.Warn("failed to dump left envelope", "err", err)
	}

	iL := resolver.ArgMax(envL, 0, cfg.XcorrN)
	iR := resolver.ArgMax(envR, 0, cfg.XcorrN)
	fix := resolver.Geometry(iL, iR, cfg.MicSeparationM, cfg.FsHz, cfg.SpeedOfSoundMPS)

	fmt.Printf("range=%.3fm bearing=%.1fdeg (iL=%d iR=%d, %d samples captured)\n",
		fix.RangeM, fix.BearingRad*180/math.Pi, iL, iR, n)

	if cfg.AnchorLat != 0 || cfg.AnchorLon != 0 {
		anchor := geofix.LatLon{LatDeg: cfg.AnchorLat, LonDeg: cfg.AnchorLon}
		gf, err := geofix.Project(anchor, cfg.AnchorBearingDeg, fix.RangeM, fix.BearingRad)
		if err != nil {
			logger.Warn("geodetic projection failed", "err", err)
			return
		}
		fmt.Printf("fix: lat=%.6f lon=%.6f  UTM zone=%d hemi=%c E=%.0f N=%.0f\n",
			gf.Position.LatDeg, gf.Position.LonDeg, gf.UTMZone, gf.UTMHemisphere, gf.UTMEasting, gf.UTMNorthing)
	}
}

// preflight confirms the receiver is alive on the control port, pushes
// the configured sample rate, and optionally sets the gain,
// mirroring it onto a Hamlib rig when one is configured.
func preflight(logger *logging.Logger, cfg *config.Config, gain int) error {
	ctrl, err := serialport.Open(cfg.CtrlPath, cfg.Baud)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	cp := ctrlport.Open(ctrl, time.Second)
	if err := cp.Enq(); err != nil {
		return err
	}
	if err := cp.SetSamplingHz(uint32(cfg.FsHz)); err != nil {
		return err
	}
	if gain >= 0 {
		if err := cp.SetGain(uint32(gain)); err != nil {
			return err
		}
		if cfg.RigModel != 0 {
			rig, err := rigctl.Open(cfg.RigModel, cfg.RigPath, cfg.Baud)
			if err != nil {
				return err
			}
			defer rig.Close()
			if err := rig.Gain(uint32(gain)); err != nil {
				return err
			}
		}
	}

	counts, err := cp.GetErrorCounts()
	if err != nil {
		return err
	}
	if counts.PulseErr > 0 || counts.AdcErr > 0 {
		logger.Warn("receiver reports accumulated errors",
			"pulse_err", counts.PulseErr, "adc_err", counts.AdcErr)
	}
	return nil
}

func buildSpec(fm bool, freqKHz, duty, byteLen int, fStart, fEnd, durationS float64) waveform.Spec {
	if fm {
		return waveform.Spec{
			Mode:          waveform.FM,
			FStartHz:      fStart,
			FEndHz:        fEnd,
			DurationS:     durationS,
			FMDutyPercent: duty,
		}
	}
	return waveform.Spec{
		Mode:        waveform.CF,
		FreqKHz:     freqKHz,
		DutyPercent: duty,
		ByteLength:  byteLen,
	}
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
