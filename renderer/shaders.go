package renderer

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

const spirvMagic = 0x07230203

// spirvHeaderWords is the fixed SPIR-V module header length.
const spirvHeaderWords = 5

// ErrShaderLoad wraps failures to obtain SPIR-V for a pipeline.
var ErrShaderLoad = errors.New("shader load failed")

// ShaderStage names accepted by CompileShaderGLSL.
const (
	StageVertex   = "vert"
	StageFragment = "frag"
)

// DecodeSPIRV converts little-endian SPIR-V bytes into words and checks the
// module header.
func DecodeSPIRV(data []byte) ([]uint32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("spir-v size %d is not a multiple of 4", len(data))
	}
	if len(data) < spirvHeaderWords*4 {
		return nil, fmt.Errorf("spir-v module too short: %d bytes", len(data))
	}
	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	if words[0] != spirvMagic {
		return nil, fmt.Errorf("bad spir-v magic %#08x", words[0])
	}
	return words, nil
}

// LoadSPIRV reads a compiled .spv file.
func LoadSPIRV(path string) ([]uint32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	words, err := DecodeSPIRV(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return words, nil
}

// CompileShaderGLSL compiles GLSL source to SPIR-V using glslc or, failing
// that, glslangValidator.
func CompileShaderGLSL(source, stage string) ([]uint32, error) {
	dir, err := os.MkdirTemp("", "vkrender-shader")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	src := filepath.Join(dir, "shader."+stage)
	out := filepath.Join(dir, "shader.spv")
	if err := os.WriteFile(src, []byte(source), 0o644); err != nil {
		return nil, err
	}

	var cmd *exec.Cmd
	if _, err := exec.LookPath("glslc"); err == nil {
		cmd = exec.Command("glslc", src, "-o", out, "-O")
	} else if _, err := exec.LookPath("glslangValidator"); err == nil {
		cmd = exec.Command("glslangValidator", "-V", src, "-o", out)
	} else {
		return nil, fmt.Errorf("no shader compiler found (glslc or glslangValidator)")
	}

	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("shader compilation failed: %v\n%s", err, output)
	}
	return LoadSPIRV(out)
}

// LoadShader returns SPIR-V for <dir>/<name>.<stage>.spv. When the file does
// not exist the fallback GLSL source is compiled instead.
func LoadShader(dir, name, stage, fallback string) ([]uint32, error) {
	path := filepath.Join(dir, name+"."+stage+".spv")
	words, err := LoadSPIRV(path)
	if err == nil {
		logger.Debugf("loaded %s", path)
		return words, nil
	}
	if !errors.Is(err, os.ErrNotExist) || fallback == "" {
		return nil, fmt.Errorf("%w: %w", ErrShaderLoad, err)
	}

	logger.Infof("%s not found, compiling built-in %s shader", path, stage)
	words, err = CompileShaderGLSL(fallback, stage)
	if err != nil {
		return nil, fmt.Errorf("%w: %s.%s: %w", ErrShaderLoad, name, stage, err)
	}
	return words, nil
}

// SimpleVertexShaderGLSL transforms by the push-constant matrix and applies
// an ambient plus diffuse term from a fixed directional light to lit draws.
const SimpleVertexShaderGLSL = `
#version 450

layout(location = 0) in vec3 position;
layout(location = 1) in vec3 color;
layout(location = 2) in vec3 normal;
layout(location = 3) in vec2 uv;

layout(location = 0) out vec3 fragColor;

layout(push_constant) uniform Push {
    mat4 transform;
    mat3 normalMatrix;
    vec3 color;
    float lit;
} push;

const vec3 DIRECTION_TO_LIGHT = normalize(vec3(1.0, -3.0, -1.0));
const float AMBIENT = 0.02;

void main() {
    gl_Position = push.transform * vec4(position, 1.0);

    vec3 normalWorldSpace = normalize(push.normalMatrix * normal);
    float diffuse = AMBIENT + max(dot(normalWorldSpace, DIRECTION_TO_LIGHT), 0.0);
    float lightIntensity = mix(1.0, diffuse, push.lit);

    fragColor = lightIntensity * color * push.color;
}
`

// SimpleFragmentShaderGLSL writes the interpolated color.
const SimpleFragmentShaderGLSL = `
#version 450

layout(location = 0) in vec3 fragColor;
layout(location = 0) out vec4 outColor;

layout(push_constant) uniform Push {
    mat4 transform;
    mat3 normalMatrix;
    vec3 color;
    float lit;
} push;

void main() {
    outColor = vec4(fragColor, 1.0);
}
`
