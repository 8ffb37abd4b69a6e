package stage

import (
	"context"
	"errors"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/flarebyte/jsforge/internal/script"
)

const evaluateScriptStage = "evaluate-script"

func scriptDir(scriptPath string) string {
	if scriptPath == "" {
		return "."
	}
	return filepath.Dir(scriptPath)
}

func scriptName(scriptPath string) string {
	if scriptPath == "" {
		return "script.js"
	}
	return scriptPath
}

func evaluateScriptRunner(ctx context.Context, in Envelope, deps Deps) (Envelope, error) {
	if in.rt != nil {
		return Envelope{}, errors.New("evaluate-script: script already evaluated")
	}
	log := deps.logger()
	rt := script.NewRuntime(log.Named("script"))
	stop := rt.Watch(ctx)
	err := rt.Evaluate(scriptName(in.input.ScriptPath), in.input.Source)
	stop()
	if err != nil {
		return Envelope{}, err
	}
	log.Debug("script evaluated", zap.String("script", in.input.ScriptPath))
	out := in
	out.rt = rt
	return out, nil
}

func init() { Register(evaluateScriptStage, evaluateScriptRunner) }
