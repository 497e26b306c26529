package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"k8s.io/klog/v2"

	"templatesync-pg-backend/pkg/cmd/templatesync"
)

func main() {
	klog.InitFlags(nil)
	defer klog.Flush()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cmd := templatesync.NewCommand(ctx, os.Stdout, os.Stderr, templatesync.Options{})
	if err := cmd.Execute(); err != nil {
		klog.ErrorS(err, "templatesync failed")
		klog.Flush()
		os.Exit(1)
	}
}
