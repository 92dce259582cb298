package config

// DefaultManifest lists the tables migrated when the config file has no tables section, in migration order.
func DefaultManifest() []TableDescriptor {
	return []TableDescriptor{
		{
			Name: "preseleccionados",
			Columns: []string{
				"numero", "modalidad", "dni", "apellidos_nombres", "region",
				"puntaje_enp", "condiciones_priorizables", "caracteristicas_labor_docente",
				"puntaje_final", "resultado",
			},
		},
		{
			Name: "no_preseleccionados",
			Columns: []string{
				"numero", "modalidad", "dni", "apellidos_nombres", "region",
				"puntaje_enp", "condiciones_priorizables", "puntaje_final", "resultado",
			},
		},
		{
			Name: "descalificados",
			Columns: []string{
				"numero", "modalidad", "dni", "apellidos_nombres", "condicion", "causal",
			},
		},
		{
			Name: "ies_elegibles",
			Columns: []string{
				"item", "ies", "tipo_ies", "tipo_gestion", "departamento",
				"sede_distrito", "programa_academico", "modalidad_estudio", "es_eib", "grupo",
			},
		},
		{
			Name: "reglas_puntaje",
			Columns: []string{
				"etapa", "concepto", "criterio", "indicador",
				"puntaje", "puntaje_maximo", "aplica_eib", "notas",
			},
		},
		{
			Name: "puntajes_corte",
			Columns: []string{
				"modalidad", "min_preseleccionado", "max_preseleccionado",
				"avg_preseleccionado", "max_no_preseleccionado",
				"vacantes_preseleccion", "becas_disponibles",
			},
		},
		{
			Name: "causales_descalificacion",
			Columns: []string{
				"causal_codigo", "causal_descripcion", "cantidad",
			},
		},
	}
}
