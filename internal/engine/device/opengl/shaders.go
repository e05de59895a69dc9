package opengl

// Shared vertex stage: world-space position plus vertex color, projected by
// the screen-space ortho matrix. The world position is forwarded for the
// light falloff math.
const vertexShaderSource = `
#version 410 core

layout (location = 0) in vec2 aPos;
layout (location = 1) in vec4 aColor;

uniform mat4 uProj;

out vec2 vWorldPos;
out vec4 vColor;

void main() {
	gl_Position = uProj * vec4(aPos, 0.0, 1.0);
	vWorldPos = aPos;
	vColor = aColor;
}
`

// Flat fragment stage for shadow volumes and cutouts.
const flatFragmentSource = `
#version 410 core

in vec4 vColor;
out vec4 FragColor;

void main() {
	FragColor = vColor;
}
`

// Light fragment stage: linear range falloff, optional cone falloff,
// shadow-mask attenuation and optional normal-map response. The mask and
// normal map are screen-sized, sampled by fragment coordinate.
const lightFragmentSource = `
#version 410 core

in vec2 vWorldPos;
in vec4 vColor;

uniform vec2  uLightPos;
uniform float uRange;
uniform float uIntensity;
uniform float uDepth;
uniform float uInnerAngle;
uniform float uOuterAngle;
uniform vec2  uLightDir;
uniform int   uUseSpotLight;
uniform int   uShadowEnabled;
uniform int   uNormalmapEnabled;
uniform vec2  uInvTexSize;
uniform sampler2D uShadowMask;
uniform sampler2D uNormalMap;

out vec4 FragColor;

void main() {
	float dist = distance(vWorldPos, uLightPos);
	float att = uRange > 0.0 ? max(0.0, 1.0 - dist / uRange) : 0.0;
	att *= uIntensity;

	if (uUseSpotLight != 0) {
		vec2 toPixel = dist > 0.0 ? (vWorldPos - uLightPos) / dist : vec2(0.0);
		float ang = acos(clamp(dot(toPixel, normalize(uLightDir)), -1.0, 1.0));
		if (ang <= uInnerAngle) {
			// full intensity inside the inner cone
		} else if (ang >= uOuterAngle) {
			att = 0.0;
		} else {
			att *= (uOuterAngle - ang) / (uOuterAngle - uInnerAngle);
		}
	}

	vec2 uv = gl_FragCoord.xy * uInvTexSize;
	if (uShadowEnabled != 0) {
		att *= texture(uShadowMask, uv).r;
	}
	if (uNormalmapEnabled != 0) {
		vec3 n = normalize(texture(uNormalMap, uv).rgb * 2.0 - 1.0);
		vec3 l = normalize(vec3(uLightPos - vWorldPos, uDepth));
		att *= max(dot(n, l), 0.0);
	}

	FragColor = vColor * att;
}
`
