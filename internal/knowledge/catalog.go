package knowledge

// DefaultCatalog returns the built-in SYSCOHADA help catalog.
func DefaultCatalog() []Entry {
	return []Entry{
		{
			ID:          "saisie-ecriture",
			Title:       "Saisir une écriture comptable",
			Description: "Enregistrer une écriture dans un journal en respectant l'équilibre débit/crédit.",
			Content: "Une écriture comptable SYSCOHADA se saisit dans un journal (achats, ventes, banque, caisse, opérations diverses). " +
				"Chaque ligne porte un compte, un libellé et un montant au débit ou au crédit. " +
				"L'écriture n'est validée que si le total des débits est égal au total des crédits.",
			Keywords: []string{"écriture", "saisie", "journal", "débit", "crédit", "comptabilité"},
			Category: "comptabilite",
			Examples: []string{
				"Ouvrez le module Comptabilité puis Saisie des écritures",
				"Choisissez le journal et la date de la pièce",
				"Saisissez les lignes au débit et au crédit",
				"Vérifiez l'équilibre puis validez",
			},
			NavigationPath: "/comptabilite/saisie",
			RelatedTopics:  []string{"plan-comptable", "lettrage", "facture-achat"},
		},
		{
			ID:          "facture-achat",
			Title:       "Créer une facture d'achat",
			Description: "Enregistrer une facture fournisseur et générer l'écriture d'achat correspondante.",
			Content: "La facture d'achat débite le compte de charges (classe 6) ou d'immobilisation (classe 2), " +
				"débite la TVA récupérable (445) et crédite le compte fournisseur (401). " +
				"Le montant TTC doit correspondre au total de la pièce.",
			Keywords:    []string{"facture", "achat", "fournisseur", "401", "tva"},
			Category:    "comptabilite",
			Subcategory: "achats",
			Examples: []string{
				"Allez dans Achats puis Nouvelle facture",
				"Sélectionnez le fournisseur",
				"Renseignez les lignes HT et le taux de TVA",
				"Enregistrez pour générer l'écriture au journal des achats",
			},
			NavigationPath: "/achats/factures/nouvelle",
			RelatedTopics:  []string{"saisie-ecriture", "tva", "facture-vente"},
		},
		{
			ID:          "facture-vente",
			Title:       "Émettre une facture de vente",
			Description: "Facturer un client et comptabiliser la vente.",
			Content: "La facture de vente débite le compte client (411) et crédite le compte de produits (classe 7) " +
				"ainsi que la TVA collectée (443). Une facture validée alimente le suivi du recouvrement.",
			Keywords:       []string{"facture", "vente", "client", "411", "produit"},
			Category:       "comptabilite",
			Subcategory:    "ventes",
			Examples:       []string{"Allez dans Ventes puis Nouvelle facture", "Choisissez le client", "Ajoutez les articles", "Validez et imprimez"},
			NavigationPath: "/ventes/factures/nouvelle",
			RelatedTopics:  []string{"recouvrement", "tva", "facture-achat"},
		},
		{
			ID:          "plan-comptable",
			Title:       "Plan comptable SYSCOHADA",
			Description: "Structure des classes de comptes du référentiel SYSCOHADA révisé.",
			Content: "Le plan comptable SYSCOHADA comporte neuf classes : 1 ressources durables, 2 actif immobilisé, " +
				"3 stocks, 4 tiers, 5 trésorerie, 6 charges, 7 produits, 8 autres charges et produits, 9 comptabilité analytique.",
			Keywords:       []string{"plan comptable", "compte", "classe", "syscohada", "ohada"},
			Category:       "referentiel",
			NavigationPath: "/parametres/plan-comptable",
			RelatedTopics:  []string{"saisie-ecriture", "bilan"},
		},
		{
			ID:          "immobilisations",
			Title:       "Gérer les immobilisations",
			Description: "Enregistrer un bien durable, suivre sa valeur et ses mouvements.",
			Content: "Une immobilisation est un bien destiné à rester durablement dans l'entreprise. " +
				"La fiche immobilisation précise la date d'acquisition, la valeur d'origine, le compte (classe 2) " +
				"et le mode d'amortissement. Les cessions et mises au rebut se saisissent depuis la fiche.",
			Keywords: []string{"immobilisation", "actif", "bien", "acquisition", "cession"},
			Category: "immobilisations",
			Examples: []string{
				"Ouvrez Immobilisations puis Nouvelle fiche",
				"Renseignez la valeur d'origine et la date de mise en service",
				"Choisissez le mode d'amortissement",
				"Enregistrez la fiche",
			},
			NavigationPath: "/immobilisations",
			RelatedTopics:  []string{"amortissements", "bilan"},
		},
		{
			ID:          "amortissements",
			Title:       "Calculer les amortissements",
			Description: "Générer le plan d'amortissement linéaire ou dégressif d'une immobilisation.",
			Content: "L'amortissement constate la dépréciation d'un bien sur sa durée d'utilité. " +
				"Le plan d'amortissement linéaire répartit la base amortissable de façon égale sur chaque exercice. " +
				"La dotation annuelle est comptabilisée au débit du compte 681 et au crédit du compte 28.",
			Keywords:       []string{"amortissement", "dotation", "linéaire", "dégressif", "681"},
			Category:       "immobilisations",
			NavigationPath: "/immobilisations/amortissements",
			RelatedTopics:  []string{"immobilisations", "cloture-exercice"},
		},
		{
			ID:          "bilan",
			Title:       "Consulter le Bilan",
			Description: "Afficher l'actif et le passif de l'exercice selon le modèle SYSCOHADA.",
			Content: "Le Bilan présente la situation patrimoniale à la clôture : actif immobilisé, actif circulant, " +
				"trésorerie-actif d'un côté, capitaux propres, dettes financières, passif circulant et trésorerie-passif de l'autre. " +
				"Il est généré automatiquement à partir de la balance.",
			Keywords:       []string{"bilan", "actif", "passif", "état financier", "balance"},
			Category:       "etats-financiers",
			NavigationPath: "/etats-financiers/bilan",
			RelatedTopics:  []string{"compte-resultat", "ratios", "cloture-exercice"},
		},
		{
			ID:          "compte-resultat",
			Title:       "Compte de Résultat",
			Description: "Analyser les charges, les produits et le résultat net de l'exercice.",
			Content: "Le Compte de Résultat SYSCOHADA présente les soldes significatifs de gestion : marge commerciale, " +
				"valeur ajoutée, excédent brut d'exploitation, résultat d'exploitation, résultat financier, résultat HAO et résultat net.",
			Keywords:       []string{"compte de résultat", "résultat", "charges", "produits", "marge"},
			Category:       "etats-financiers",
			NavigationPath: "/etats-financiers/compte-resultat",
			RelatedTopics:  []string{"bilan", "ratios"},
		},
		{
			ID:          "ratios",
			Title:       "Ratios financiers",
			Description: "Mesurer la liquidité, la solvabilité et la rentabilité à partir des états financiers.",
			Content: "Les ratios sont calculés à partir du Bilan et du Compte de Résultat : ratio de liquidité générale, " +
				"autonomie financière, rentabilité des capitaux propres, délai moyen de recouvrement clients.",
			Keywords:       []string{"ratio", "liquidité", "solvabilité", "rentabilité", "analyse"},
			Category:       "etats-financiers",
			NavigationPath: "/etats-financiers/ratios",
			RelatedTopics:  []string{"bilan", "compte-resultat", "recouvrement"},
		},
		{
			ID:          "recouvrement",
			Title:       "Recouvrement des créances",
			Description: "Suivre les factures impayées et lancer les relances clients.",
			Content: "Le module de recouvrement liste les créances échues par client et par ancienneté. " +
				"Une relance peut être envoyée par courrier ou courriel, et chaque action est historisée dans le dossier du client.",
			Keywords: []string{"recouvrement", "relance", "créance", "impayé", "client"},
			Category: "recouvrement",
			Examples: []string{
				"Ouvrez Recouvrement puis Créances échues",
				"Filtrez par ancienneté",
				"Sélectionnez les clients à relancer",
				"Choisissez le modèle de relance et envoyez",
			},
			NavigationPath: "/recouvrement",
			RelatedTopics:  []string{"facture-vente", "lettrage"},
		},
		{
			ID:          "lettrage",
			Title:       "Lettrer les comptes de tiers",
			Description: "Rapprocher factures et règlements sur un compte client ou fournisseur.",
			Content: "Le lettrage associe les lignes d'un compte de tiers dont le solde est nul, " +
				"par exemple une facture et son règlement. Les lignes non lettrées constituent le solde ouvert du tiers.",
			Keywords:       []string{"lettrage", "rapprochement", "règlement", "tiers"},
			Category:       "comptabilite",
			NavigationPath: "/comptabilite/lettrage",
			RelatedTopics:  []string{"recouvrement", "saisie-ecriture"},
		},
		{
			ID:          "tva",
			Title:       "Déclaration de TVA",
			Description: "Préparer la déclaration à partir de la TVA collectée et de la TVA déductible.",
			Content: "La TVA due est égale à la TVA collectée (443) diminuée de la TVA récupérable (445). " +
				"L'état préparatoire reprend les écritures de la période et le crédit de TVA antérieur.",
			Keywords:       []string{"tva", "taxe", "déclaration", "443", "445"},
			Category:       "fiscalite",
			NavigationPath: "/fiscalite/tva",
			RelatedTopics:  []string{"facture-achat", "facture-vente"},
		},
		{
			ID:          "import-exercices",
			Title:       "Importer des données multi-exercices",
			Description: "Reprendre balances et écritures de plusieurs exercices avec l'assistant d'import.",
			Content: "L'assistant d'import accepte des fichiers Excel ou CSV. Il vérifie la correspondance des comptes, " +
				"l'équilibre de chaque exercice et signale les lignes rejetées avant intégration.",
			Keywords: []string{"import", "exercice", "reprise", "balance", "csv", "excel"},
			Category: "import",
			Examples: []string{
				"Ouvrez Import puis Assistant multi-exercices",
				"Choisissez les exercices à reprendre",
				"Déposez les fichiers et associez les colonnes",
				"Contrôlez le rapport puis lancez l'intégration",
			},
			NavigationPath: "/import/assistant",
			RelatedTopics:  []string{"cloture-exercice", "plan-comptable"},
		},
		{
			ID:          "cloture-exercice",
			Title:       "Clôturer un exercice",
			Description: "Passer les écritures d'inventaire et reporter les soldes à nouveau.",
			Content: "La clôture vérifie que tous les journaux sont équilibrés, comptabilise les dotations et génère les " +
				"à-nouveaux de l'exercice suivant. Un exercice clôturé n'accepte plus de saisie.",
			Keywords:       []string{"clôture", "exercice", "inventaire", "à-nouveaux"},
			Category:       "comptabilite",
			NavigationPath: "/comptabilite/cloture",
			RelatedTopics:  []string{"amortissements", "bilan", "reouverture-exercice"},
		},
		{
			ID:          "permissions",
			Title:       "Gérer les permissions",
			Description: "Attribuer des rôles et des droits d'accès aux utilisateurs.",
			Content: "Chaque utilisateur reçoit un rôle (administrateur, comptable, auditeur, consultation). " +
				"Les droits se règlent par module : lecture, saisie, validation, administration.",
			Keywords:       []string{"permission", "droit", "rôle", "utilisateur", "accès"},
			Category:       "administration",
			NavigationPath: "/parametres/permissions",
			RelatedTopics:  []string{"parametrage"},
		},
		{
			ID:          "parametrage",
			Title:       "Paramétrer la société",
			Description: "Configurer la société, les exercices, les journaux et les devises.",
			Content: "Le paramétrage initial définit la raison sociale, le régime fiscal, les exercices comptables, " +
				"la liste des journaux et la devise de tenue (FCFA par défaut).",
			Keywords:       []string{"paramétrage", "configuration", "société", "journal", "devise"},
			Category:       "administration",
			NavigationPath: "/parametres/societe",
			RelatedTopics:  []string{"permissions", "plan-comptable"},
		},
	}
}
