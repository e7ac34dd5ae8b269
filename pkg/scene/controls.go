package scene

import "github.com/taigrr/softrast/pkg/render"

// Viewer controls. Rendering toggles apply to the opaque objects; the
// translucent ones keep their own settings.

// updateOpaque applies fn to the settings of every opaque object.
func (s *Scene) updateOpaque(fn func(*render.RenderSettings)) {
	for _, o := range s.Objects {
		if o.Translucent {
			continue
		}
		st := o.Settings()
		fn(&st)
		o.SetSettings(st)
	}
}

// firstOpaque returns the settings of the first opaque object, which the
// cycling controls advance from, so objects that started out of step are
// brought in line.
func (s *Scene) firstOpaque() (render.RenderSettings, bool) {
	for _, o := range s.Objects {
		if !o.Translucent {
			return o.Settings(), true
		}
	}
	return render.RenderSettings{}, false
}

// CycleCullMode advances the cull mode BackFace, FrontFace, None.
func (s *Scene) CycleCullMode() render.CullMode {
	cur, ok := s.firstOpaque()
	if !ok {
		return render.CullBack
	}
	next := cur.CullMode.Next()
	s.updateOpaque(func(st *render.RenderSettings) { st.CullMode = next })
	render.Logger().Info("cull mode", "mode", next)
	return next
}

// CycleShadingMode advances the shading mode Combined, ObservedArea,
// Diffuse, Specular.
func (s *Scene) CycleShadingMode() render.ShadingMode {
	cur, ok := s.firstOpaque()
	if !ok {
		return render.ShadeCombined
	}
	next := cur.ShadingMode.Next()
	s.updateOpaque(func(st *render.RenderSettings) { st.ShadingMode = next })
	render.Logger().Info("shading mode", "mode", next)
	return next
}

// ToggleNormalMap switches normal mapping on or off.
func (s *Scene) ToggleNormalMap() bool {
	cur, _ := s.firstOpaque()
	on := !cur.NormalMap
	s.updateOpaque(func(st *render.RenderSettings) { st.NormalMap = on })
	render.Logger().Info("normal map", "on", on)
	return on
}

// ToggleDepthVisualization switches between lighting and a greyscale view
// of depth.
func (s *Scene) ToggleDepthVisualization() bool {
	cur, _ := s.firstOpaque()
	on := !cur.VisualizeDepth
	s.updateOpaque(func(st *render.RenderSettings) { st.VisualizeDepth = on })
	render.Logger().Info("depth visualization", "on", on)
	return on
}

// ToggleBoundsVisualization switches between rasterizing triangles and
// filling their bounding boxes.
func (s *Scene) ToggleBoundsVisualization() bool {
	cur, _ := s.firstOpaque()
	on := !cur.VisualizeBounds
	s.updateOpaque(func(st *render.RenderSettings) { st.VisualizeBounds = on })
	render.Logger().Info("bounds visualization", "on", on)
	return on
}

// CycleFilter switches the texture filter of the opaque objects.
func (s *Scene) CycleFilter() render.FilterMode {
	s.Filter = s.Filter.Next()
	for _, o := range s.Objects {
		if o.Translucent {
			continue
		}
		for _, t := range o.textures {
			t.FilterMode = s.Filter
		}
	}
	render.Logger().Info("texture filter", "mode", s.Filter)
	return s.Filter
}

// ToggleRotation starts or stops the spin. The change eases in over a
// fraction of a second.
func (s *Scene) ToggleRotation() bool {
	s.Rotating = !s.Rotating
	render.Logger().Info("rotation", "on", s.Rotating)
	return s.Rotating
}

// ToggleTranslucent shows or hides the translucent objects.
func (s *Scene) ToggleTranslucent() bool {
	s.ShowTranslucent = !s.ShowTranslucent
	render.Logger().Info("translucent meshes", "on", s.ShowTranslucent)
	return s.ShowTranslucent
}

// ToggleUniformClear switches between the background and the uniform clear
// color.
func (s *Scene) ToggleUniformClear() bool {
	s.UseUniformClear = !s.UseUniformClear
	render.Logger().Info("uniform clear color", "on", s.UseUniformClear)
	return s.UseUniformClear
}
